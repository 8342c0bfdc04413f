package storage

import (
	"context"
	"os"
	"testing"

	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgres connects to TEST_DATABASE_URL and wipes the tables; the test is skipped without it.
func newPostgres(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStorage(ctx, dsn, PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.pool.Exec(ctx, `TRUNCATE participants, events, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return s
}

func TestPostgres_EventLifecycle(t *testing.T) {
	s := newPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, 1))
	require.NoError(t, s.CreateUser(ctx, 1))
	require.NoError(t, s.CreateUser(ctx, 2))

	in := sampleEvent(1, "meetup")
	id, err := s.CreateEvent(ctx, in)
	require.NoError(t, err)

	got, err := s.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "01.03.2025 18:30", models.FormatEventDate(got.OccursAt))
	assert.Equal(t, in.Title, got.Title)

	require.NoError(t, s.AddParticipant(ctx, id, 2))
	assert.ErrorIs(t, s.AddParticipant(ctx, id, 2), models.ErrAlreadySubscribed)
	require.NoError(t, s.RemoveParticipant(ctx, id, 1))
	require.NoError(t, s.AddParticipant(ctx, id, 1))

	assert.ErrorIs(t, s.DeleteEvent(ctx, id, 2), models.ErrEventNotFound)
	n, err := s.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteEvent(ctx, id, 1))
	n, err = s.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPostgres_AddParticipantMapsOnlyEventForeignKey(t *testing.T) {
	s := newPostgres(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))
	id, err := s.CreateEvent(ctx, sampleEvent(1, "meetup"))
	require.NoError(t, err)

	require.NoError(t, s.CreateUser(ctx, 2))
	assert.ErrorIs(t, s.AddParticipant(ctx, id+1000, 2), models.ErrEventNotFound)

	err = s.AddParticipant(ctx, id, 404)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrEventNotFound)
	assert.True(t, models.IsStoreError(err))
}
