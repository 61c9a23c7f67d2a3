package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dayplanner/core/internal/adapters/repository"
	"github.com/dayplanner/core/internal/infrastructure/config"
	"github.com/dayplanner/core/internal/ports"
)

// Open builds the key-value backend selected by cfg.Driver and checks it
// is reachable
func Open(ctx context.Context, cfg config.StorageConfig) (ports.KeyValueStore, error) {
	var kv ports.KeyValueStore

	switch cfg.Driver {
	case config.DriverFile:
		fileStore, err := repository.NewFileStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		if err := fileStore.Claim(); err != nil {
			_ = fileStore.Close()
			return nil, err
		}
		kv = fileStore
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.GetAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
		})
		kv = repository.NewRedisStore(client, cfg.Redis.KeyPrefix)
	case config.DriverMemory:
		kv = repository.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := kv.Ping(pingCtx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to reach %s storage: %w", cfg.Driver, err)
	}

	return kv, nil
}

// HealthCheck checks storage health
func HealthCheck(ctx context.Context, kv ports.KeyValueStore) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kv.Ping(ctx); err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}

	return nil
}
