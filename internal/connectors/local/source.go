// Package local reads release notes from a file or standard input.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docgap/internal/adapters/driven/helpcenter/htmltext"
	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ReleaseNotesSource = (*Source)(nil)

const (
	// SourceName identifies local release notes.
	SourceName = "file"

	// Stdin is the ref that reads standard input.
	Stdin = "-"

	// MaxSize is the largest accepted notes file (5MB).
	MaxSize = 5 * 1024 * 1024
)

// Source reads notes from the filesystem or an injected stdin.
type Source struct {
	stdin io.Reader
}

// NewSource creates a local source. A nil stdin means os.Stdin.
func NewSource(stdin io.Reader) *Source {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &Source{stdin: stdin}
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return SourceName
}

// Fetch reads the file at ref, or stdin when ref is "-". HTML files are
// reduced to text.
func (s *Source) Fetch(_ context.Context, ref string) (*domain.ReleaseNotes, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: no file given", domain.ErrInvalidInput)
	}

	var (
		data   []byte
		err    error
		source = ref
	)
	if ref == Stdin {
		source = "stdin"
		data, err = io.ReadAll(io.LimitReader(s.stdin, MaxSize))
	} else {
		data, err = readFile(ref)
	}
	if err != nil {
		return nil, err
	}

	text := string(data)
	ext := strings.ToLower(filepath.Ext(ref))
	if ext == ".html" || ext == ".htm" || (ref == Stdin && strings.Contains(text, "</")) {
		text = htmltext.ToText(text)
	}

	notes := &domain.ReleaseNotes{Text: strings.TrimSpace(text), Source: source}
	if notes.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", source, domain.ErrEmptyReleaseNotes)
	}
	return notes, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, path, MaxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
