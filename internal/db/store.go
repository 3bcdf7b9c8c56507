// Package db persists review records. Every store returns records ordered
// by timestamp and treats ranges as half-open [start, end).
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/spacesedan/steamnoodles/config"
	"github.com/spacesedan/steamnoodles/internal/clients"
	"github.com/spacesedan/steamnoodles/internal/models"
)

type ReviewStore interface {
	Append(ctx context.Context, records ...models.ReviewRecord) error
	ReadAll(ctx context.Context) ([]models.ReviewRecord, error)
	ReadRange(ctx context.Context, start, end time.Time) ([]models.ReviewRecord, error)
	Close() error
}

// Open builds the store selected by STORE_DRIVER.
func Open(ctx context.Context, cfg config.Settings) (ReviewStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)

	case config.DriverPostgres:
		pool, err := clients.GetPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverDynamoDB:
		client, err := clients.GetDynamoDBClient(ctx, clients.AWSConfig{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.AWSEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return NewDynamoStore(client, cfg.DynamoDBTable), nil

	default:
		return nil, fmt.Errorf("[DB] unknown store driver %q", cfg.StoreDriver)
	}
}
