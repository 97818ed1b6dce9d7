package riskassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps in-flight sessions. Sessions expire after the store's
// TTL measured from their last save.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns a process-local SessionStore, used when no Redis
// URL is configured. Sessions are kept as JSON so callers never share state.
func NewMemoryStore(ttl time.Duration) SessionStore {
	return &memoryStore{
		ttl:     ttl,
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

func (m *memoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictExpired()
	m.entries[s.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && m.ttl > 0 && !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var s Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// evictExpired must be called with mu held.
func (m *memoryStore) evictExpired() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}
