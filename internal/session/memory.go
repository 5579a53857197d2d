package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type entry[T any] struct {
	v    T
	seen time.Time
}

// MemoryStore is an in-process Store. State is lost on restart.
// Entries idle for longer than TTL are dropped, and at most MaxEntries are kept
// (the least recently seen goes first).
type MemoryStore[T any] struct {
	mu         sync.RWMutex
	m          map[string]entry[T]
	ttl        time.Duration
	maxEntries int
	lastSweep  time.Time
	now        func() time.Time
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return NewMemoryStoreWithLimits[T](DefaultTTL, DefaultMaxEntries)
}

// NewMemoryStoreWithLimits creates a store with the given idle TTL and size cap.
// Zero disables the respective limit.
func NewMemoryStoreWithLimits[T any](ttl time.Duration, maxEntries int) *MemoryStore[T] {
	return &MemoryStore[T]{
		m:          map[string]entry[T]{},
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[id]
	if !ok || s.expired(e, s.now()) {
		var zero T
		return zero, false, nil
	}
	return e.v, true, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(id, v)
	return nil
}

func (s *MemoryStore[T]) Update(_ context.Context, id string, fn func(v T) T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur T
	if e, ok := s.m[id]; ok && !s.expired(e, s.now()) {
		cur = e.v
	}
	v := fn(cur)
	s.store(id, v)
	return v, nil
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}

// store writes v under id; caller holds the write lock
func (s *MemoryStore[T]) store(id string, v T) {
	now := s.now()
	if s.ttl > 0 && now.Sub(s.lastSweep) >= sweepInterval {
		for k, e := range s.m {
			if s.expired(e, now) {
				delete(s.m, k)
			}
		}
		s.lastSweep = now
	}
	if _, exists := s.m[id]; !exists && s.maxEntries > 0 {
		for len(s.m) >= s.maxEntries {
			s.evictOldest()
		}
	}
	s.m[id] = entry[T]{v: v, seen: now}
}

func (s *MemoryStore[T]) evictOldest() {
	var oldest string
	var oldestSeen time.Time
	first := true
	for k, e := range s.m {
		if first || e.seen.Before(oldestSeen) {
			oldest, oldestSeen, first = k, e.seen, false
		}
	}
	delete(s.m, oldest)
}

func (s *MemoryStore[T]) expired(e entry[T], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.seen) > s.ttl
}
