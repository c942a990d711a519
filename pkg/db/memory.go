package db

import (
	"bytes"
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	sessions *xsync.Map[string, Session]
	now      func() time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: xsync.NewMap[string, Session](),
		now:      time.Now,
	}
}

// GetSession returns a copy of the stored session. Expired sessions are
// removed and reported as not found.
func (m *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	session, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(m.now()) {
		m.sessions.Delete(id)
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

// SaveSession inserts or replaces a session
func (m *MemoryStore) SaveSession(ctx context.Context, session *Session) error {
	stored := *copySession(*session)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	stored.UpdatedAt = m.now()
	m.sessions.Store(stored.ID, stored)
	return nil
}

// DeleteSession removes a session if present
func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.sessions.Delete(id)
	return nil
}

// PurgeExpired removes every session expired at the given time
func (m *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	var expired []string
	m.sessions.Range(func(id string, session Session) bool {
		if session.Expired(now) {
			expired = append(expired, id)
		}
		return true
	})

	purged := 0
	for _, id := range expired {
		if _, ok := m.sessions.LoadAndDelete(id); ok {
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of stored sessions, including expired ones not yet purged
func (m *MemoryStore) Len() int {
	return m.sessions.Size()
}

func copySession(s Session) *Session {
	s.State = bytes.Clone(s.State)
	s.Result = bytes.Clone(s.Result)
	return &s
}
