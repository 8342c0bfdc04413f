package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newServices(t *testing.T) (*EventService, *UserService) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := zaptest.NewLogger(t)
	return NewEventService(store, logger), NewUserService(store, logger)
}

func validEvent(owner int64) models.Event {
	return models.Event{
		OwnerID:     owner,
		Title:       "Go meetup",
		Description: "talks and pizza",
		OccursAt:    time.Date(2025, time.March, 1, 18, 30, 0, 0, time.UTC),
		Location:    "ITMO",
		Link:        "www.example.org",
	}
}

func TestEventService_CreateRejectsIncompleteEvent(t *testing.T) {
	events, users := newServices(t)
	ctx := context.Background()
	require.NoError(t, users.Ensure(ctx, 1))

	e := validEvent(1)
	e.Description = ""
	_, err := events.Create(ctx, e)
	require.Error(t, err)

	all, err := events.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEventService_SubscribeTwiceKeepsOneParticipation(t *testing.T) {
	events, users := newServices(t)
	ctx := context.Background()
	require.NoError(t, users.Ensure(ctx, 1))
	require.NoError(t, users.Ensure(ctx, 2))

	id, err := events.Create(ctx, validEvent(1))
	require.NoError(t, err)

	require.NoError(t, events.Subscribe(ctx, id, 2))
	assert.ErrorIs(t, events.Subscribe(ctx, id, 2), models.ErrAlreadySubscribed)

	n, err := events.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEventService_UnsubscribeWithoutParticipationIsNoop(t *testing.T) {
	events, users := newServices(t)
	ctx := context.Background()
	require.NoError(t, users.Ensure(ctx, 1))
	require.NoError(t, users.Ensure(ctx, 2))
	require.NoError(t, users.Ensure(ctx, 3))

	id, err := events.Create(ctx, validEvent(1))
	require.NoError(t, err)
	require.NoError(t, events.Subscribe(ctx, id, 3))

	require.NoError(t, events.Unsubscribe(ctx, id, 2))

	n, err := events.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	ok, err := events.IsSubscribed(ctx, id, 3)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEventService_DeleteCascadesParticipants(t *testing.T) {
	events, users := newServices(t)
	ctx := context.Background()
	require.NoError(t, users.Ensure(ctx, 1))

	id, err := events.Create(ctx, validEvent(1))
	require.NoError(t, err)
	const participants = 4
	for uid := int64(100); uid < 100+participants; uid++ {
		require.NoError(t, users.Ensure(ctx, uid))
		require.NoError(t, events.Subscribe(ctx, id, uid))
	}

	assert.ErrorIs(t, events.Delete(ctx, id, 100), models.ErrEventNotFound)
	require.NoError(t, events.Delete(ctx, id, 1))

	n, err := events.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := events.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	_, err = events.Get(ctx, id)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestEventService_GetOwnedHidesForeignEvents(t *testing.T) {
	events, users := newServices(t)
	ctx := context.Background()
	require.NoError(t, users.Ensure(ctx, 1))

	id, err := events.Create(ctx, validEvent(1))
	require.NoError(t, err)

	got, err := events.GetOwned(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, id, got.EventID)

	_, err = events.GetOwned(ctx, id, 2)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestUserService_EnsureIsIdempotent(t *testing.T) {
	_, users := newServices(t)
	ctx := context.Background()

	require.NoError(t, users.Ensure(ctx, 5))
	require.NoError(t, users.Ensure(ctx, 5))

	users.mu.Lock()
	delete(users.seen, 5)
	users.mu.Unlock()
	require.NoError(t, users.Ensure(ctx, 5), "store-level duplicate insert must not fail")
}
