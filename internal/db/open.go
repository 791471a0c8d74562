package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Open picks the store once at startup: PostgreSQL when dsn is set and
// reachable, otherwise the in-memory store.
func Open(ctx context.Context, dsn string, opts GormOptions, log *zap.Logger) Store {
	if dsn == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return NewMemoryStore()
	}

	gs, err := OpenGorm(dsn, opts)
	if err != nil {
		log.Warn("database unavailable, using in-memory store", zap.Error(err))
		return NewMemoryStore()
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := gs.Ping(pctx); err != nil {
		log.Warn("database ping failed, using in-memory store", zap.Error(err))
		_ = gs.Close()
		return NewMemoryStore()
	}

	log.Info("connected to database")
	return gs
}
