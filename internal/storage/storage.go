// Package storage is durable key/value storage for small client-side
// preferences, such as the "theme" key.
package storage

import (
	"context"
	"sync"
)

// ThemeKey is the key the theme preference is stored under.
const ThemeKey = "theme"

// Local stores string values by key. Get reports ok=false for missing keys.
type Local interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStorage is a Local kept in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Scoped returns a view of m whose keys live under scope, mirroring
// RedisStorage.Scoped.
func (m *MemoryStorage) Scoped(scope string) Local {
	return &memoryScope{root: m, prefix: scope + ":"}
}

type memoryScope struct {
	root   *MemoryStorage
	prefix string
}

func (s *memoryScope) Get(ctx context.Context, key string) (string, bool, error) {
	return s.root.Get(ctx, s.prefix+key)
}

func (s *memoryScope) Set(ctx context.Context, key, value string) error {
	return s.root.Set(ctx, s.prefix+key, value)
}

func (s *memoryScope) Remove(ctx context.Context, key string) error {
	return s.root.Remove(ctx, s.prefix+key)
}
