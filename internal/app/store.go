package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/config"
	"github.com/kailas-cloud/coursefind/internal/db"
	dbBadger "github.com/kailas-cloud/coursefind/internal/db/badger"
	dbFile "github.com/kailas-cloud/coursefind/internal/db/file"
	dbRedis "github.com/kailas-cloud/coursefind/internal/db/redis"
)

// NewStore opens the configured cache backend and waits for it to be ready.
// The "none" driver returns a nil store.
func NewStore(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.CacheNone:
		logger.Info("Embedding cache disabled")
		return nil, nil
	case config.CacheFile:
		store, err = dbFile.NewStore(cfg.Dir)
	case config.CacheBadger:
		store, err = dbBadger.NewStore(dbBadger.Config{Dir: cfg.Dir}, logger)
	case config.CacheRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			TTL:      time.Duration(cfg.TTLHours) * time.Hour,
		})
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s cache store: %w", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s cache store not ready: %w", cfg.Driver, err)
	}
	logger.Info("Connected to cache store",
		zap.String("driver", cfg.Driver),
		zap.String("dir", cfg.Dir),
		zap.Strings("addrs", cfg.Addrs),
	)
	return store, nil
}
