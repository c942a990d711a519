package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	session := &Session{
		ID:        "abc",
		State:     json.RawMessage(`{"zones":["Norte"]}`),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"zones":["Norte"]}`, string(got.State))
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())

	// Returned sessions are copies
	got.State[2] = 'X'
	again, err := store.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"zones":["Norte"]}`, string(again.State))
}

func TestMemoryStore_MissingAndDeleted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.SaveSession(ctx, &Session{ID: "abc"}))
	require.NoError(t, store.DeleteSession(ctx, "abc"))

	_, err = store.GetSession(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting twice is not an error
	assert.NoError(t, store.DeleteSession(ctx, "abc"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SaveSession(ctx, &Session{ID: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.SaveSession(ctx, &Session{ID: "new", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.SaveSession(ctx, &Session{ID: "forever"}))

	_, err := store.GetSession(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	purged, err := store.PurgeExpired(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, store.Len())

	_, err = store.GetSession(ctx, "forever")
	assert.NoError(t, err)
}
