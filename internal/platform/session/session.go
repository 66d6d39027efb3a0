// Package session persists login sessions independently of the entity
// stores. A session is an opaque JSON payload keyed by a random sid with an
// absolute expiry; expired sessions read as absent.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is a stored session.
type Record struct {
	SID    string    `json:"sid"`
	Data   []byte    `json:"sess"`
	Expire time.Time `json:"expire"`
}

// Store is the session-store adapter contract used by the HTTP layer.
type Store interface {
	// Get returns the session payload, or nil when the sid is unknown or
	// the session has expired.
	Get(ctx context.Context, sid string) ([]byte, error)
	// Set creates or replaces the session payload and its expiry.
	Set(ctx context.Context, sid string, data []byte, expire time.Time) error
	// Destroy removes the session. Destroying an unknown sid is a no-op.
	Destroy(ctx context.Context, sid string) error
	// Prune removes expired sessions and returns how many were removed.
	Prune(ctx context.Context) (int, error)
}

// NewSID returns a fresh random session identifier.
func NewSID() string {
	return uuid.NewString()
}

// MemoryStore is a map-backed Store for the in-memory deployment.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Record)}
}

func (s *MemoryStore) Get(_ context.Context, sid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sid]
	if !ok || time.Now().After(rec.Expire) {
		return nil, nil
	}
	out := make([]byte, len(rec.Data))
	copy(out, rec.Data)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, sid string, data []byte, expire time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.sessions[sid] = Record{SID: sid, Data: stored, Expire: expire}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *MemoryStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for sid, rec := range s.sessions {
		if now.After(rec.Expire) {
			delete(s.sessions, sid)
			removed++
		}
	}
	return removed, nil
}

// StartSweeper prunes the store on the given interval until ctx is cancelled.
func StartSweeper(ctx context.Context, store Store, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = store.Prune(ctx)
			}
		}
	}()
}
