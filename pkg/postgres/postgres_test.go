package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/db"
)

func TestPendingMigrations(t *testing.T) {
	pending, err := pendingMigrations(map[string]bool{})
	require.NoError(t, err)
	assert.Contains(t, pending, "001_workflow_session.sql")

	pending, err = pendingMigrations(map[string]bool{"001_workflow_session.sql": true})
	require.NoError(t, err)
	assert.NotContains(t, pending, "001_workflow_session.sql")
}

// testDB connects to the database named by CRONOPU_TEST_DATABASE_URL
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("CRONOPU_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CRONOPU_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	d, err := NewDB(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	_, err = d.RunMigrations(ctx)
	require.NoError(t, err)
	return d
}

func TestSessionStore_Integration(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	id := uuid.NewString()

	session := &db.Session{
		ID:        id,
		State:     json.RawMessage(`{"zones":["Norte"]}`),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, d.SaveSession(ctx, session))

	got, err := d.GetSession(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zones":["Norte"]}`, string(got.State))
	assert.Empty(t, got.Result)

	session.Fingerprint = "abc"
	session.Result = json.RawMessage(`{"rows":[]}`)
	require.NoError(t, d.SaveSession(ctx, session))

	got, err = d.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Fingerprint)
	assert.JSONEq(t, `{"rows":[]}`, string(got.Result))

	purged, err := d.PurgeExpired(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, 1)

	_, err = d.GetSession(ctx, id)
	assert.ErrorIs(t, err, db.ErrSessionNotFound)
}

func TestGetSession_InvalidID(t *testing.T) {
	d := &DB{}
	_, err := d.GetSession(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, db.ErrSessionNotFound)
}
