package cache

import (
	"context"
	"sync"
	"time"

	"github.com/clubhouse-ops/membership-admin/internal/events"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local QueryCache.
type MemoryCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	gens    map[events.Collection]int64
	entries map[events.Collection]map[string]memoryEntry
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		now:     time.Now,
		gens:    make(map[events.Collection]int64),
		entries: make(map[events.Collection]map[string]memoryEntry),
	}
}

func (m *MemoryCache) Generation(_ context.Context, tag events.Collection) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[tag], nil
}

func (m *MemoryCache) Get(_ context.Context, tag events.Collection, gen int64, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if gen != m.gens[tag] {
		return nil, ErrMiss
	}
	entry, ok := m.entries[tag][key]
	if !ok || !m.now().Before(entry.expiresAt) {
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set drops writes made against a generation that has since been invalidated.
func (m *MemoryCache) Set(_ context.Context, tag events.Collection, gen int64, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gens[tag] {
		return nil
	}
	bucket, ok := m.entries[tag]
	if !ok {
		bucket = make(map[string]memoryEntry)
		m.entries[tag] = bucket
	}
	bucket[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCache) InvalidateTag(_ context.Context, tag events.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[tag]++
	delete(m.entries, tag)
	return nil
}
