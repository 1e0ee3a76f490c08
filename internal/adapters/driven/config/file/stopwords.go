package file

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docgap/internal/logger"
)

// StopWordsFile is the default stop-word file name inside the config dir.
const StopWordsFile = "stopwords.txt"

// ReadStopWords reads a stop-word file: one or more comma separated words
// per line, '#' starts a comment.
func ReadStopWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, w := range strings.Split(line, ",") {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				words = append(words, w)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return words, nil
}

// StopWordsWatcher reloads a stop-word file whenever it changes on disk.
// onChange receives the new word list, or nil when the file is removed so
// the caller can restore its defaults.
type StopWordsWatcher struct {
	path     string
	onChange func([]string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once
}

// WatchStopWords loads path once, if present, and watches it for changes.
// The parent directory is watched so editors that replace the file by
// rename are handled.
func WatchStopWords(path string, onChange func([]string)) (*StopWordsWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &StopWordsWatcher{path: abs, onChange: onChange, done: make(chan struct{})}
	if words, err := ReadStopWords(abs); err == nil {
		onChange(words)
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("[stopwords] %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.watcher = watcher

	go w.loop()
	return w, nil
}

func (w *StopWordsWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("[stopwords] watcher: %v", err)
		}
	}
}

func (w *StopWordsWatcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if _, err := os.Stat(w.path); errors.Is(err, fs.ErrNotExist) {
			logger.Info("[stopwords] %s removed, using defaults", w.path)
			w.onChange(nil)
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	words, err := ReadStopWords(w.path)
	if err != nil {
		logger.Warn("[stopwords] reload failed: %v", err)
		return
	}
	logger.Info("[stopwords] reloaded %d words from %s", len(words), w.path)
	w.onChange(words)
}

// Close stops watching. It is safe to call more than once.
func (w *StopWordsWatcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}
