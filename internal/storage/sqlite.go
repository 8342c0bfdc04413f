package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/storage/migrations"
	"github.com/pressly/goose/v3/database"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStorage is a single-file store for local runs without PostgreSQL.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if needed) the database file at path and applies migrations.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serializes writers anyway; one connection keeps transactions free of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, db, database.DialectSQLite3, migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) CreateUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id) VALUES (?) ON CONFLICT DO NOTHING`,
		userID,
	)
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (owner_id, title, description, occurs_at, location, link)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Title, e.Description, models.FormatStorageDate(e.OccursAt), e.Location, e.Link,
	)
	if err != nil {
		return 0, storeErr("create event", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create event", err)
	}
	return id, nil
}

func (s *SQLiteStorage) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, occurs_at, location, link FROM events WHERE id = ?`,
		eventID,
	)
	e, err := scanSQLiteEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, storeErr("get event", err)
	}
	return &e, nil
}

func (s *SQLiteStorage) UpdateEvent(ctx context.Context, e models.Event) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events
		 SET title = ?, description = ?, occurs_at = ?, location = ?, link = ?
		 WHERE id = ? AND owner_id = ?`,
		e.Title, e.Description, models.FormatStorageDate(e.OccursAt), e.Location, e.Link, e.EventID, e.OwnerID,
	)
	if err != nil {
		return storeErr("update event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("update event", err)
	}
	if n == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteEvent(ctx context.Context, eventID, ownerID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE event_id = ?`, eventID); err != nil {
			return storeErr("delete participants", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND owner_id = ?`, eventID, ownerID)
		if err != nil {
			return storeErr("delete event", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("delete event", err)
		}
		if n == 0 {
			return models.ErrEventNotFound
		}
		return nil
	})
}

func (s *SQLiteStorage) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, occurs_at, location, link FROM events ORDER BY id`,
	)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return collectSQLiteEvents(rows, "list events")
}

func (s *SQLiteStorage) ListEventsByOwner(ctx context.Context, ownerID int64) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, occurs_at, location, link FROM events WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, storeErr("list events by owner", err)
	}
	return collectSQLiteEvents(rows, "list events by owner")
}

func (s *SQLiteStorage) AddParticipant(ctx context.Context, eventID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (event_id, user_id) VALUES (?, ?)`,
		eventID, userID,
	)
	if err != nil {
		var sqliteErr *msqlite.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.Code() {
			case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
				return models.ErrAlreadySubscribed
			case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
				// SQLite does not name the violated key, so look the event up.
				if !s.eventExists(ctx, eventID) {
					return models.ErrEventNotFound
				}
			}
		}
		return storeErr("add participant", err)
	}
	return nil
}

func (s *SQLiteStorage) eventExists(ctx context.Context, eventID int64) bool {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = ?)`, eventID).Scan(&exists)
	return err == nil && exists
}

func (s *SQLiteStorage) RemoveParticipant(ctx context.Context, eventID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM participants WHERE event_id = ? AND user_id = ?`,
		eventID, userID,
	)
	if err != nil {
		return storeErr("remove participant", err)
	}
	return nil
}

func (s *SQLiteStorage) IsParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE event_id = ? AND user_id = ?)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return false, storeErr("is participant", err)
	}
	return exists, nil
}

func (s *SQLiteStorage) CountParticipants(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE event_id = ?`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, storeErr("count participants", err)
	}
	return n, nil
}

// withTx runs fn in a transaction, committing on success and rolling back on error or panic.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = storeErr("commit tx", cerr)
		}
	}()

	err = fn(tx)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEvent(row rowScanner) (models.Event, error) {
	var (
		e        models.Event
		occursAt string
	)
	if err := row.Scan(&e.EventID, &e.OwnerID, &e.Title, &e.Description, &occursAt, &e.Location, &e.Link); err != nil {
		return e, err
	}
	t, err := models.ParseStorageDate(occursAt)
	if err != nil {
		return e, fmt.Errorf("occurs_at %q: %w", occursAt, err)
	}
	e.OccursAt = t
	return e, nil
}

func collectSQLiteEvents(rows *sql.Rows, op string) ([]models.Event, error) {
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return events, nil
}
