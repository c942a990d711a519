package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/workflow"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/db"
)

const sessionCookieName = "cronopu_session"

// Session lifecycle events
const (
	eventCreated   = "created"
	eventCompleted = "completed"
	eventExpired   = "expired"
	eventReset     = "reset"
)

// session is the stored record plus its decoded workflow state
type session struct {
	record *db.Session
	state  workflow.State
}

// loadSession returns the caller's session, starting a new one when the
// cookie is missing or points at a session that no longer exists
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		sess, err := s.lookupSession(r.Context(), cookie.Value)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
	}

	sess := s.newSession(w, r)
	if cookie != nil {
		sess.state = sess.state.WithFlash(msgSessionExpired)
	}
	return sess, nil
}

func (s *Server) lookupSession(ctx context.Context, id string) (*session, error) {
	record, err := s.store.GetSession(ctx, id)
	if errors.Is(err, db.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var state workflow.State
	if len(record.State) > 0 {
		if err := json.Unmarshal(record.State, &state); err != nil {
			s.logger.Warn("Discarding unreadable session state", zap.String("session", id), zap.Error(err))
			return nil, nil
		}
	}

	return &session{record: record, state: state}, nil
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request) *session {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.Server.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.recorder.IncrementSessionEvent(eventCreated)
	s.logger.Debug("Session created", zap.String("session", id))

	return &session{
		record: &db.Session{ID: id},
		state:  workflow.New(),
	}
}

// saveSession persists the state and pushes the expiry forward
func (s *Server) saveSession(ctx context.Context, sess *session) error {
	data, err := json.Marshal(sess.state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	sess.record.State = data
	sess.record.ExpiresAt = s.now().Add(s.cfg.Server.SessionTTL)

	if err := s.store.SaveSession(ctx, sess.record); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
