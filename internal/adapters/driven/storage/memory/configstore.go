package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docgap/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a map and never touches disk.
// Tests use it in place of the TOML store.
type ConfigStore struct {
	kv.Typed

	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store, optionally seeded.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	s.Typed = kv.NewTyped(s.Get)
	return s
}

// Get returns the raw value under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Delete removes key.
func (s *ConfigStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path reports the pseudo path ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
