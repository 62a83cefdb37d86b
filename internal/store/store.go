// Package store provides the key/value capability behind the autosave
// cache. The board model receives a Store explicitly instead of reaching
// for ambient process-wide state, and a fallback wrapper degrades to memory
// when the backing store stops accepting writes.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is an opaque key/value sink for small blobs.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool)
	// Set stores a value under key.
	Set(key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}

// MemStore is the in-memory Store used for tests and as the degradation
// target of WithFallback.
type MemStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set implements Store.
func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.values[key] = cp
	return nil
}

// Delete implements Store.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStore keeps each key as a file under a directory, one file per key.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns the per-user store location,
// ~/.config/yarnboard/cache on Linux.
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "yarnboard", "cache")
}

// keyPath flattens a key into a safe filename.
func (f *FileStore) keyPath(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(f.dir, safe)
}

// Get implements Store.
func (f *FileStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(f.keyPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set implements Store.
func (f *FileStore) Set(key string, value []byte) error {
	return os.WriteFile(f.keyPath(key), value, 0o644)
}

// Delete implements Store.
func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fallbackStore serves from primary until a write fails, then switches to
// an in-memory store for the rest of the process. Reads prefer whichever
// side is current.
type fallbackStore struct {
	mu       sync.Mutex
	primary  Store
	mem      *MemStore
	degraded bool
}

// WithFallback wraps primary so a failing backend degrades to memory
// instead of surfacing errors to every caller.
func WithFallback(primary Store) Store {
	return &fallbackStore{primary: primary, mem: NewMemStore()}
}

func (s *fallbackStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	degraded := s.degraded
	s.mu.Unlock()

	if degraded {
		return s.mem.Get(key)
	}
	return s.primary.Get(key)
}

func (s *fallbackStore) Set(key string, value []byte) error {
	s.mu.Lock()
	degraded := s.degraded
	s.mu.Unlock()

	if !degraded {
		if err := s.primary.Set(key, value); err == nil {
			return nil
		}
		s.mu.Lock()
		s.degraded = true
		s.mu.Unlock()
	}
	return s.mem.Set(key, value)
}

func (s *fallbackStore) Delete(key string) error {
	s.mu.Lock()
	degraded := s.degraded
	s.mu.Unlock()

	if degraded {
		return s.mem.Delete(key)
	}
	return s.primary.Delete(key)
}
