package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spacesedan/steamnoodles/internal/models"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS reviews (
	id        TEXT        PRIMARY KEY,
	ts        TIMESTAMPTZ NOT NULL,
	text      TEXT        NOT NULL,
	sentiment TEXT        NOT NULL DEFAULT '',
	reply     TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS reviews_ts_idx ON reviews (ts)`

// Pool is the part of *pgxpool.Pool the store needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type PostgresStore struct {
	pool Pool
}

func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("[Postgres] creating schema: %w", err)
	}
	return nil
}

// Append inserts records in one transaction. Records whose id already
// exists are left untouched.
func (s *PostgresStore) Append(ctx context.Context, records ...models.ReviewRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[Postgres] begin: %w", err)
	}

	for _, r := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO reviews (id, ts, text, sentiment, reply)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			r.ID, r.Timestamp, r.Text, string(r.Sentiment), r.Reply)
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Warn("[Postgres] rollback failed", slog.String("error", rbErr.Error()))
			}
			return fmt.Errorf("[Postgres] inserting review %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("[Postgres] commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]models.ReviewRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, ts, text, sentiment, reply FROM reviews ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] querying reviews: %w", err)
	}
	return scanPostgresReviews(rows)
}

func (s *PostgresStore) ReadRange(ctx context.Context, start, end time.Time) ([]models.ReviewRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, ts, text, sentiment, reply FROM reviews
		 WHERE ts >= $1 AND ts < $2 ORDER BY ts, id`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] querying reviews in range: %w", err)
	}
	return scanPostgresReviews(rows)
}

func scanPostgresReviews(rows pgx.Rows) ([]models.ReviewRecord, error) {
	defer rows.Close()

	var records []models.ReviewRecord
	for rows.Next() {
		var (
			r         models.ReviewRecord
			sentiment string
		)
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Text, &sentiment, &r.Reply); err != nil {
			return nil, fmt.Errorf("[Postgres] scanning review: %w", err)
		}
		r.Sentiment = models.Sentiment(sentiment)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Postgres] iterating reviews: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
