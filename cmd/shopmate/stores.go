package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shopmate/internal/config"
	"shopmate/internal/domain"
	"shopmate/internal/store/memory"
	"shopmate/internal/store/mongo"
)

// openStore returns the configured product store and a close func.
func openStore(ctx context.Context, cfg config.StoreConfig, uri string, logger *zap.Logger) (domain.ProductStore, func(), error) {
	switch cfg.Type {
	case "memory":
		logger.Warn("using in-memory product store; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	case "mongo":
		st, err := mongo.Open(ctx, mongo.Config{
			URI:        uri,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Timeout:    time.Duration(cfg.Mongo.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		logger.Info("connected to mongo", zap.String("database", cfg.Mongo.Database), zap.String("collection", cfg.Mongo.Collection))
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := st.Close(ctx); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return st, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store: %s", cfg.Type)
	}
}
