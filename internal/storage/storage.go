package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Storage is the durable event store. Events are listed in creation order.
//
// Failures caused by connectivity or constraint violations are reported as
// *models.StoreError; a missing or foreign event as models.ErrEventNotFound;
// a repeated subscription as models.ErrAlreadySubscribed.
type Storage interface {
	CreateUser(ctx context.Context, userID int64) error

	CreateEvent(ctx context.Context, event models.Event) (int64, error)
	GetEvent(ctx context.Context, eventID int64) (*models.Event, error)
	// UpdateEvent overwrites the five user fields of an event owned by event.OwnerID.
	UpdateEvent(ctx context.Context, event models.Event) error
	// DeleteEvent removes an owned event together with its participations, atomically.
	DeleteEvent(ctx context.Context, eventID, ownerID int64) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByOwner(ctx context.Context, ownerID int64) ([]models.Event, error)

	AddParticipant(ctx context.Context, eventID, userID int64) error
	// RemoveParticipant is idempotent: removing a missing participation is not an error.
	RemoveParticipant(ctx context.Context, eventID, userID int64) error
	IsParticipant(ctx context.Context, eventID, userID int64) (bool, error)
	CountParticipants(ctx context.Context, eventID int64) (int, error)

	Close() error
}

func storeErr(op string, err error) error {
	return &models.StoreError{Op: op, Err: err}
}

// migrate applies the embedded goose migrations found under dir.
func migrate(ctx context.Context, db *sql.DB, dialect database.Dialect, fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("migrations dir %s: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
