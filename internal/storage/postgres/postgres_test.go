package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newSession() *models.Session {
	return &models.Session{
		ID: uuid.NewString(),
		Participants: []models.Participant{
			{ID: uuid.NewString(), Name: "Alice"},
			{ID: uuid.NewString(), Name: "Bob"},
		},
		Items: []models.Item{
			{ID: uuid.NewString(), Name: "Pizza", Quantity: 2, UnitPrice: 10},
			{ID: uuid.NewString(), Name: "Soda", Quantity: 3, UnitPrice: 2},
		},
		Shares:    [][]float64{{1, 1}, {2, 1}},
		TaxAmount: 6,
		CreatedAt: 1700000000,
		UpdatedAt: 1700000000,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	original := newSession()
	require.NoError(t, store.CreateSession(ctx, original))
	t.Cleanup(func() { store.DeleteSession(ctx, original.ID) })

	got, err := store.GetSession(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestStore_SaveReplacesContents(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	sess := newSession()
	require.NoError(t, store.CreateSession(ctx, sess))
	t.Cleanup(func() { store.DeleteSession(ctx, sess.ID) })

	sess.Participants = sess.Participants[1:]
	sess.Shares = [][]float64{{1}, {1}}
	sess.Settled = true
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Participants[0].Name)
	assert.Equal(t, [][]float64{{1}, {1}}, got.Shares)
	assert.True(t, got.Settled)
}

func TestStore_NotFound(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.GetSession(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.ErrorIs(t, store.SaveSession(ctx, newSession()), storage.ErrSessionNotFound)
	assert.ErrorIs(t, store.DeleteSession(ctx, uuid.NewString()), storage.ErrSessionNotFound)
}

func TestStore_PurgeSessions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	stale := newSession()
	stale.UpdatedAt = 1000
	fresh := newSession()
	require.NoError(t, store.CreateSession(ctx, stale))
	require.NoError(t, store.CreateSession(ctx, fresh))
	t.Cleanup(func() { store.DeleteSession(ctx, fresh.ID) })

	purged, err := store.PurgeSessions(ctx, 2000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	_, err = store.GetSession(ctx, stale.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	_, err = store.GetSession(ctx, fresh.ID)
	assert.NoError(t, err)
}
