package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresConnectTimeout = 5 * time.Second

var (
	postgresInstance *pgxpool.Pool
	postgresErr      error
	postgresOnce     sync.Once
)

// GetPostgresPool returns the process wide pool, connecting and pinging on
// first use.
func GetPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	postgresOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, postgresConnectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			postgresErr = fmt.Errorf("[PostgresClient] failed to create pool: %w", err)
			return
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			postgresErr = fmt.Errorf("[PostgresClient] failed to ping PostgreSQL: %w", err)
			return
		}

		slog.Info("[PostgresClient] Connected to PostgreSQL successfully")
		postgresInstance = pool
	})

	return postgresInstance, postgresErr
}
