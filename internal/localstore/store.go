// Package localstore is the process-local fallback store. It keeps data that
// must survive a backend outage: trades written while the backend was
// unreachable and the persisted auth session.
package localstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/database"
)

// Backend is a minimal key/value store. Get reports found=false for unknown keys.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open builds the backend selected by cfg.Driver.
func Open(cfg config.Store, logger *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Warn("Using in-memory local store, fallback data is lost on exit")
		return NewMemoryStore(), nil
	case "sqlite":
		db, err := database.NewDatabase(cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("Using sqlite local store", zap.String("dsn", cfg.DSN))
		return NewSQLiteStore(db), nil
	case "redis":
		logger.Info("Using redis local store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), nil
	default:
		return nil, fmt.Errorf("unknown local store driver %q", cfg.Driver)
	}
}
