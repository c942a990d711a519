package db

import (
	"encoding/json"
	"time"
)

// Session represents one user's in-progress planning workflow
type Session struct {
	ID string

	// State is the JSON-encoded workflow state
	State json.RawMessage

	// Fingerprint identifies the inputs that produced Result
	Fingerprint string

	// Result is the JSON-encoded outcome of the last plan, if any
	Result json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
