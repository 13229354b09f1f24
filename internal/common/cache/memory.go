// internal/common/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache with per-entry TTL and a background janitor.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	stop    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	Value     string
	ExpiresAt time.Time
}

func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}

	// Start cleanup routine
	go m.cleanupExpired()

	return m
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.ExpiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	m.entries[key] = &memoryEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine. Safe to call more than once.
func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.stop)
	})
	return nil
}

func (m *Memory) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, entry := range m.entries {
				if now.After(entry.ExpiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}
