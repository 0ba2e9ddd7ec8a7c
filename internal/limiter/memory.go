package limiter

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count    int
	resetsAt time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Counts are not shared across workers; production uses RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, decay time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.resetsAt) {
		entry = &memoryEntry{resetsAt: s.now().Add(decay)}
		s.entries[key] = entry
	}

	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) Attempts(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.resetsAt) {
		return 0, nil
	}
	return entry.count, nil
}

func (s *MemoryStore) AvailableIn(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0, nil
	}

	remaining := entry.resetsAt.Sub(s.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
