package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vancho-go/ipreverser/internal/app/config"
	"github.com/vancho-go/ipreverser/internal/app/models"
)

// HistoryLimit is the number of records returned by a history listing.
const HistoryLimit = 50

// HistoryStore is the append-only record of reversals. Records are created one
// at a time and removed all at once; nothing is updated in place.
type HistoryStore interface {
	CreateRecord(ctx context.Context, address, reversed string) (models.AddressRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.AddressRecord, error)
	ClearHistory(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func Initialize(ctx context.Context, cfg config.StoreConfig) (HistoryStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return InitializeMongo(ctx, cfg.MongoURI, cfg.MongoCollection)
	case config.DriverPostgres:
		return InitializePostgres(ctx, cfg.PostgresDSN)
	case config.DriverRedis:
		return InitializeRedis(ctx, cfg.RedisURL, cfg.RedisKey)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("initialize: unknown store driver %q", cfg.Driver)
	}
}

// now truncates to millisecond precision, the resolution Mongo keeps, so that
// every driver reports the same createdAt for a record.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
