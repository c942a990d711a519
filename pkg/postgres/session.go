package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/db"
)

var _ db.SessionStore = (*DB)(nil)

// GetSession retrieves a session that has not expired
func (d *DB) GetSession(ctx context.Context, id string) (*db.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, db.ErrSessionNotFound
	}

	var (
		s         db.Session
		state     []byte
		result    []byte
		expiresAt *time.Time
	)
	err := d.pool.QueryRow(ctx, `
		SELECT id::text, state, fingerprint, result, created_at, updated_at, expires_at
		FROM workflow_session
		WHERE id = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`, id).Scan(&s.ID, &state, &s.Fingerprint, &result, &s.CreatedAt, &s.UpdatedAt, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	s.State = state
	s.Result = result
	if expiresAt != nil {
		s.ExpiresAt = expiresAt.UTC()
	}
	return &s, nil
}

// SaveSession inserts or replaces a session
func (d *DB) SaveSession(ctx context.Context, session *db.Session) error {
	if _, err := uuid.Parse(session.ID); err != nil {
		return fmt.Errorf("invalid session id %q: %w", session.ID, err)
	}

	state := string(session.State)
	if state == "" {
		state = "{}"
	}

	var result any
	if len(session.Result) > 0 {
		result = string(session.Result)
	}

	var expiresAt *time.Time
	if !session.ExpiresAt.IsZero() {
		t := session.ExpiresAt.UTC()
		expiresAt = &t
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO workflow_session (id, state, fingerprint, result, expires_at)
		VALUES ($1, $2::jsonb, $3, $4::jsonb, $5)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			fingerprint = EXCLUDED.fingerprint,
			result = EXCLUDED.result,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`, session.ID, state, session.Fingerprint, result, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSession removes a session if present
func (d *DB) DeleteSession(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := d.pool.Exec(ctx, `DELETE FROM workflow_session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session expired at the given time
func (d *DB) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM workflow_session
		WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
