package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEvent(owner int64, title string) models.Event {
	return models.Event{
		OwnerID:     owner,
		Title:       title,
		Description: "description of " + title,
		OccursAt:    time.Date(2025, time.March, 1, 18, 30, 0, 0, time.UTC),
		Location:    "ITMO, Kronverksky 49",
		Link:        "https://example.com/" + title,
	}
}

func TestSQLite_CreateUserIsIdempotent(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, 1))
	require.NoError(t, s.CreateUser(ctx, 1))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLite_EventRoundTrip(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 7))

	in := sampleEvent(7, "meetup")
	id, err := s.CreateEvent(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.GetEvent(ctx, id)
	require.NoError(t, err)
	in.EventID = id
	assert.Equal(t, in, *got)
	assert.Equal(t, "01.03.2025 18:30", models.FormatEventDate(got.OccursAt))

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT occurs_at FROM events WHERE id = ?`, id).Scan(&raw))
	assert.Equal(t, "2025-03-01 18:30:00", raw)
}

func TestSQLite_GetMissingEvent(t *testing.T) {
	s := newSQLite(t)
	_, err := s.GetEvent(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestSQLite_ListOrderAndOwnerFilter(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))
	require.NoError(t, s.CreateUser(ctx, 2))

	for _, e := range []models.Event{sampleEvent(1, "a"), sampleEvent(2, "b"), sampleEvent(1, "c")} {
		_, err := s.CreateEvent(ctx, e)
		require.NoError(t, err)
	}

	all, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, titles(all))

	mine, err := s.ListEventsByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, titles(mine))

	none, err := s.ListEventsByOwner(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_UpdateEventChecksOwner(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))

	id, err := s.CreateEvent(ctx, sampleEvent(1, "old"))
	require.NoError(t, err)

	upd := sampleEvent(1, "new")
	upd.EventID = id
	upd.OccursAt = time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateEvent(ctx, upd))

	got, err := s.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, upd, *got)

	foreign := upd
	foreign.OwnerID = 2
	foreign.Title = "hijacked"
	assert.ErrorIs(t, s.UpdateEvent(ctx, foreign), models.ErrEventNotFound)

	got, err = s.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
}

func TestSQLite_ParticipantsAreUniqueAndRemovalIdempotent(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))
	require.NoError(t, s.CreateUser(ctx, 2))
	id, err := s.CreateEvent(ctx, sampleEvent(1, "party"))
	require.NoError(t, err)

	require.NoError(t, s.AddParticipant(ctx, id, 2))
	assert.ErrorIs(t, s.AddParticipant(ctx, id, 2), models.ErrAlreadySubscribed)

	n, err := s.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.IsParticipant(ctx, id, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveParticipant(ctx, id, 1))
	n, err = s.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.RemoveParticipant(ctx, id, 2))
	ok, err = s.IsParticipant(ctx, id, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.AddParticipant(ctx, 999, 2), models.ErrEventNotFound)
}

func TestSQLite_AddParticipantForUnknownUserIsStoreError(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))
	id, err := s.CreateEvent(ctx, sampleEvent(1, "party"))
	require.NoError(t, err)

	err = s.AddParticipant(ctx, id, 404)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrEventNotFound)
	assert.True(t, models.IsStoreError(err))
}

func TestSQLite_DeleteEventRemovesParticipants(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))

	id, err := s.CreateEvent(ctx, sampleEvent(1, "gone"))
	require.NoError(t, err)
	keep, err := s.CreateEvent(ctx, sampleEvent(1, "kept"))
	require.NoError(t, err)

	for uid := int64(10); uid < 15; uid++ {
		require.NoError(t, s.CreateUser(ctx, uid))
		require.NoError(t, s.AddParticipant(ctx, id, uid))
	}
	require.NoError(t, s.AddParticipant(ctx, keep, 10))

	require.NoError(t, s.DeleteEvent(ctx, id, 1))

	var orphans int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM participants WHERE event_id = ?`, id).Scan(&orphans))
	assert.Zero(t, orphans)

	all, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, titles(all))

	n, err := s.CountParticipants(ctx, keep)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_DeleteForeignEventRollsBack(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, 1))
	require.NoError(t, s.CreateUser(ctx, 2))

	id, err := s.CreateEvent(ctx, sampleEvent(1, "mine"))
	require.NoError(t, err)
	require.NoError(t, s.AddParticipant(ctx, id, 2))

	assert.ErrorIs(t, s.DeleteEvent(ctx, id, 2), models.ErrEventNotFound)

	n, err := s.CountParticipants(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "participants must survive a rejected delete")
}

func TestSQLite_ClosedDatabaseReportsStoreError(t *testing.T) {
	s := newSQLite(t)
	require.NoError(t, s.Close())

	_, err := s.ListEvents(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsStoreError(err))
}

func titles(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}
