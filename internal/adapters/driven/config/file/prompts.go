package file

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts_readme.md.tmpl
var readmeSource string

var readmeTemplate = template.Must(template.New("readme").Parse(readmeSource))

// PromptStore serves prompts from user-editable files, seeding the
// directory with the built-in templates on first use. A file that is
// missing, blank or has lost placeholders yields the built-in template.
type PromptStore struct {
	dir  string
	seed func() error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store rooted at dir, or ~/.docgap/prompts when
// dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}

	s := &PromptStore{dir: dir, cache: make(map[string]string)}
	s.seed = sync.OnceValue(s.writeDefaults)
	return s, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the prompt called name.
func (s *PromptStore) Load(name string) (string, error) {
	fallback, known := driven.DefaultPrompt(name)

	if err := s.seed(); err != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, err)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("prompt %q: %w", name, err)
	case err != nil:
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("[prompts] %s: %v, using built-in prompt", name, err)
		}
		return fallback, nil
	case prompt == "" && known:
		return fallback, nil
	case prompt == "":
		return "", fmt.Errorf("prompt %q: file is empty", name)
	case known && placeholders(prompt) != placeholders(fallback):
		logger.Warn("[prompts] %s.txt has %d placeholders, want %d; using built-in prompt",
			name, placeholders(prompt), placeholders(fallback))
		return fallback, nil
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeDefaults creates the directory, the README and any missing prompt
// file. Existing files are left alone.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	names := driven.DefaultPromptNames()
	for _, name := range names {
		content, _ := driven.DefaultPrompt(name)
		if err := writeIfMissing(s.path(name), func(f *os.File) error {
			_, err := f.WriteString(content)
			return err
		}); err != nil {
			return fmt.Errorf("seed prompt %q: %w", name, err)
		}
	}

	return writeIfMissing(filepath.Join(s.dir, "README.md"), func(f *os.File) error {
		return readmeTemplate.Execute(f, names)
	})
}

func writeIfMissing(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// placeholders counts format verbs, ignoring escaped percent signs.
func placeholders(format string) int {
	return strings.Count(strings.ReplaceAll(format, "%%", ""), "%")
}
