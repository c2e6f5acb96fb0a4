package repository

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore is the in-process fallback for the redis session store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
	}
}

func (m *MemorySessionStore) Resolve(_ context.Context, token string) (int64, error) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return 0, ErrSessionNotFound
	}
	return sess.userID, nil
}

func (m *MemorySessionStore) Put(_ context.Context, token string, userID int64) error {
	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = time.Now().Add(m.ttl)
	}

	m.mu.Lock()
	m.sessions[token] = memorySession{userID: userID, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}
