package repository

import (
	"fmt"

	"taskflow/internal/config"
)

// Open builds the key-value backend selected by cfg.Driver.
// The returned close function is never nil.
func Open(cfg config.StorageConfig) (KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverBolt:
		store, err := OpenBolt(cfg.BoltPath, "taskflow")
		if err != nil {
			return nil, noop, fmt.Errorf("open bolt: %w", err)
		}
		return store, store.Close, nil
	case config.DriverRedis:
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open redis: %w", err)
		}
		store := NewRedisStore(client, "")
		return store, store.Close, nil
	case config.DriverMemory:
		return NewMemoryStore(), noop, nil
	case config.DriverSQLite, "":
		db, err := NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		store := NewSQLiteStore(db)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
