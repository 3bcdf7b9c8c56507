package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spacesedan/steamnoodles/internal/models"
)

// migrations run in order, each inside a transaction.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS reviews (
		id        TEXT    PRIMARY KEY,
		ts_nanos  INTEGER NOT NULL,
		text      TEXT    NOT NULL,
		sentiment TEXT    NOT NULL DEFAULT '',
		reply     TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_ts_idx ON reviews (ts_nanos)`,
}

// SQLiteStore keeps reviews in a local file. Timestamps are stored as
// unix nanoseconds and read back in UTC.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, enables WAL mode
// and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, closeAfter(db, fmt.Errorf("enabling WAL: %w", err))
	}
	if err := migrate(db); err != nil {
		return nil, closeAfter(db, fmt.Errorf("running migrations: %w", err))
	}

	return &SQLiteStore{db: db}, nil
}

func closeAfter(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}

func migrate(db *sql.DB) error {
	for i, m := range migrations {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", i, err)
		}
		if _, err := tx.Exec(m); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", i, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, records ...models.ReviewRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO reviews (id, ts_nanos, text, sentiment, reply) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Timestamp.UnixNano(), r.Text, string(r.Sentiment), r.Reply); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting review %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]models.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts_nanos, text, sentiment, reply FROM reviews ORDER BY ts_nanos, id`)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	return scanSQLiteReviews(rows)
}

func (s *SQLiteStore) ReadRange(ctx context.Context, start, end time.Time) ([]models.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts_nanos, text, sentiment, reply FROM reviews
		 WHERE ts_nanos >= ? AND ts_nanos < ? ORDER BY ts_nanos, id`,
		start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("querying reviews in range: %w", err)
	}
	return scanSQLiteReviews(rows)
}

func scanSQLiteReviews(rows *sql.Rows) ([]models.ReviewRecord, error) {
	defer rows.Close()

	var records []models.ReviewRecord
	for rows.Next() {
		var (
			r         models.ReviewRecord
			nanos     int64
			sentiment string
		)
		if err := rows.Scan(&r.ID, &nanos, &r.Text, &sentiment, &r.Reply); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		r.Timestamp = time.Unix(0, nanos).UTC()
		r.Sentiment = models.Sentiment(sentiment)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
