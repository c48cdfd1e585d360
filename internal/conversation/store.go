package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrContextNotFound reports a missing session context.
var ErrContextNotFound = errors.New("context not found")

// Store is keyed access to per-session contexts. Implementations own
// retention: the in-memory store evicts idle sessions, the Redis store
// leans on key TTLs.
type Store interface {
	// Get returns the session's context, or an error if none exists.
	Get(ctx context.Context, sessionID string) (*Context, error)
	// GetOrCreate returns the session's context, creating an empty one
	// on first access. Idempotent; no exists-check dance required.
	GetOrCreate(ctx context.Context, sessionID string) (*Context, error)
	// Save persists the (mutated) context.
	Save(ctx context.Context, sessionID string, c *Context) error
	// Clear drops the session's context entirely.
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is the in-process Store. Sessions idle longer than
// maxIdle are evicted lazily on the next store access.
type MemoryStore struct {
	mu       sync.Mutex
	contexts map[string]*memoryEntry
	maxIdle  time.Duration
}

type memoryEntry struct {
	context    *Context
	lastAccess time.Time
}

// NewMemoryStore creates an in-memory context store. maxIdle <= 0
// disables eviction.
func NewMemoryStore(maxIdle time.Duration) *MemoryStore {
	return &MemoryStore{
		contexts: make(map[string]*memoryEntry),
		maxIdle:  maxIdle,
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	if s.maxIdle <= 0 {
		return
	}
	for id, entry := range s.contexts {
		if now.Sub(entry.lastAccess) > s.maxIdle {
			delete(s.contexts, id)
		}
	}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweep(now)

	entry, ok := s.contexts[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrContextNotFound)
	}
	entry.lastAccess = now
	return entry.context, nil
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, sessionID string) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweep(now)

	entry, ok := s.contexts[sessionID]
	if !ok {
		entry = &memoryEntry{context: NewContext()}
		s.contexts[sessionID] = entry
	}
	entry.lastAccess = now
	return entry.context, nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, c *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts[sessionID] = &memoryEntry{context: c, lastAccess: time.Now()}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.contexts, sessionID)
	return nil
}
