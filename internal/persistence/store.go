package persistence

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/visitor-access/internal/config"
)

// Keys under which the whole application state is persisted.
const (
	KeyVisitors = "visitors"
	KeyVisits   = "visits"
)

// KVStore persists opaque JSON documents under string keys.
type KVStore interface {
	// Get returns nil without error when the key was never written.
	Get(ctx context.Context, key string) ([]byte, error)
	// PutAll writes every entry in one atomic operation.
	PutAll(ctx context.Context, values map[string][]byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KVStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		store, err := NewSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.StoreDriverRedis:
		return NewRedis(cfg.Redis, logger), nil
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; state is lost on exit")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func sortedKeys(values map[string][]byte) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
