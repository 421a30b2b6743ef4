package drafts

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-process runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(_ context.Context, contactID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[contactID]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	if err := validate(sess); err != nil {
		return err
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Draft.ContactID] = *sess
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, contactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, contactID)
	return nil
}

// Len returns the number of live drafts.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
