package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pantry/backend/internal/domain/shared"
	"github.com/pantry/backend/internal/infrastructure/config"
)

// NewIdempotencyStore creates an idempotency store for the configured backend.
// With the redis backend, an unreachable Redis falls back to the in-memory
// store so a single-instance deployment still starts.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "memory":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil

	case "redis":
		store, err := NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
				"Duplicate order submissions may slip through if multiple instances run.",
				zap.Error(err),
			)
			return NewInMemoryIdempotencyStore(), nil
		}
		logger.Info("using Redis idempotency store")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
