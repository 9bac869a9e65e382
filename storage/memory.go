package storage

import (
	"context"
	"sync"
)

// MemoryTier is an in-process map. It backs the session tier and the
// last-resort fallback.
type MemoryTier struct {
	name    string
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryTier creates an empty in-memory tier.
func NewMemoryTier(name string) *MemoryTier {
	if name == "" {
		name = "memory"
	}
	return &MemoryTier{
		name:    name,
		entries: make(map[string]string),
	}
}

// Name returns the tier name.
func (m *MemoryTier) Name() string {
	return m.name
}

// Get retrieves a value. Returns ("", false, nil) on miss.
func (m *MemoryTier) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	return v, ok, nil
}

// Set stores a value.
func (m *MemoryTier) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
	return nil
}

// Delete removes a value. Idempotent.
func (m *MemoryTier) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryTier) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close drops all entries.
func (m *MemoryTier) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]string)
	m.mu.Unlock()
	return nil
}

// Ensure MemoryTier implements Tier
var _ Tier = (*MemoryTier)(nil)
