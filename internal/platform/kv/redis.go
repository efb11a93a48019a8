package kv

import (
	"context"
	"fmt"

	"github.com/Neeharika2/code-assessor/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis opens and pings the redis instance used as the shared session
// backend.
func ConnectRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Debug("connected to redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return rdb, nil
}
