package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TheReshkin/events-bot/internal/models"
	"github.com/TheReshkin/events-bot/internal/storage/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3/database"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	// participantsEventFK ссылается на events(id); см. миграции.
	participantsEventFK = "participants_event_fk"
)

// PostgresStorage реализует хранилище на базе PostgreSQL с пулом соединений (pgxpool).
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// PoolOptions задаёт размеры пула; нулевые значения заменяются значениями по умолчанию.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// NewPostgresStorage подключается к PostgreSQL, применяет миграции и возвращает *PostgresStorage.
func NewPostgresStorage(ctx context.Context, dbURL string, opts PoolOptions) (*PostgresStorage, error) {
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	// Настройки пула
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolCfg.MinConns = opts.MinConns
	}
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Проверка подключения
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	// goose работает через database/sql поверх того же пула.
	sqlDB := stdlib.OpenDBFromPool(pool)
	err = migrate(ctx, sqlDB, database.DialectPostgres, migrations.Postgres, "postgres")
	if cerr := sqlDB.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// Close закрывает пул соединений. Вызывайте при завершении приложения.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

// ---------- Users ----------

func (s *PostgresStorage) CreateUser(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`,
		userID,
	)
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

// ---------- Events CRUD ----------

func (s *PostgresStorage) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO events (owner_id, title, description, occurs_at, location, link)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		e.OwnerID, e.Title, e.Description, e.OccursAt.UTC(), e.Location, e.Link,
	).Scan(&id)
	if err != nil {
		return 0, storeErr("create event", err)
	}
	return id, nil
}

func (s *PostgresStorage) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, description, occurs_at, location, link FROM events WHERE id = $1`,
		eventID,
	)
	e, err := scanPgEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, storeErr("get event", err)
	}
	return &e, nil
}

func (s *PostgresStorage) UpdateEvent(ctx context.Context, e models.Event) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE events
		 SET title = $1, description = $2, occurs_at = $3, location = $4, link = $5
		 WHERE id = $6 AND owner_id = $7`,
		e.Title, e.Description, e.OccursAt.UTC(), e.Location, e.Link, e.EventID, e.OwnerID,
	)
	if err != nil {
		return storeErr("update event", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

// DeleteEvent удаляет записи участников и само событие в одной транзакции.
func (s *PostgresStorage) DeleteEvent(ctx context.Context, eventID, ownerID int64) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM participants WHERE event_id = $1`, eventID); err != nil {
			return storeErr("delete participants", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1 AND owner_id = $2`, eventID, ownerID)
		if err != nil {
			return storeErr("delete event", err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) || models.IsStoreError(err) {
			return err
		}
		return storeErr("delete event", err)
	}
	return nil
}

func (s *PostgresStorage) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, title, description, occurs_at, location, link FROM events ORDER BY id`,
	)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return collectPgEvents(rows, "list events")
}

func (s *PostgresStorage) ListEventsByOwner(ctx context.Context, ownerID int64) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, title, description, occurs_at, location, link FROM events WHERE owner_id = $1 ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, storeErr("list events by owner", err)
	}
	return collectPgEvents(rows, "list events by owner")
}

// ---------- Participants ----------

func (s *PostgresStorage) AddParticipant(ctx context.Context, eventID, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO participants (event_id, user_id) VALUES ($1, $2)`,
		eventID, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return models.ErrAlreadySubscribed
			case pgForeignKeyViolation:
				if pgErr.ConstraintName == participantsEventFK {
					return models.ErrEventNotFound
				}
			}
		}
		return storeErr("add participant", err)
	}
	return nil
}

func (s *PostgresStorage) RemoveParticipant(ctx context.Context, eventID, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return storeErr("remove participant", err)
	}
	return nil
}

func (s *PostgresStorage) IsParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return false, storeErr("is participant", err)
	}
	return exists, nil
}

func (s *PostgresStorage) CountParticipants(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE event_id = $1`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, storeErr("count participants", err)
	}
	return n, nil
}

func scanPgEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.EventID, &e.OwnerID, &e.Title, &e.Description, &e.OccursAt, &e.Location, &e.Link)
	e.OccursAt = e.OccursAt.UTC()
	return e, err
}

func collectPgEvents(rows pgx.Rows, op string) ([]models.Event, error) {
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanPgEvent(rows)
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
