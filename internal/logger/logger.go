// Package logger writes docgap's diagnostic output to stderr.
//
// Debug, info and warning lines only appear with --verbose and trace the
// analysis pipeline: corpus loading, embedding batches, fallbacks and gap
// checks. Errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns debug, info and warning output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects all output, os.Stderr by default.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// write holds the lock for the whole write so lines never interleave.
func write(level Level, text string) {
	mu.Lock()
	defer mu.Unlock()
	if level < LevelError && !verbose {
		return
	}
	_, _ = io.WriteString(output, text)
}

// Logf writes one line at level.
func Logf(level Level, format string, args ...any) {
	write(level, "["+level.String()+"] "+fmt.Sprintf(format, args...)+"\n")
}

func Debug(format string, args ...any) { Logf(LevelDebug, format, args...) }

func Info(format string, args ...any) { Logf(LevelInfo, format, args...) }

func Warn(format string, args ...any) { Logf(LevelWarn, format, args...) }

// Error is written regardless of verbosity.
func Error(format string, args ...any) { Logf(LevelError, format, args...) }

// Section writes a header that groups the lines of one pipeline stage.
func Section(name string) {
	write(LevelDebug, "\n=== "+name+" ===\n")
}

// Timer starts timing a stage; calling the returned func logs the elapsed
// time at debug level.
func Timer(stage string) func() {
	start := time.Now()
	return func() {
		Debug("[timing] %s took %s", stage, time.Since(start).Round(time.Millisecond))
	}
}
