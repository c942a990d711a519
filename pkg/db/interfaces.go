package db

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session does not exist or has expired
var ErrSessionNotFound = errors.New("session not found")

// SessionStore defines the interface for workflow session persistence.
// Both the in-memory MemoryStore and postgres.DB implement this interface.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	SaveSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
