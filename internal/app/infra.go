package app

import (
	"context"

	"jobportal/internal/config"
	"jobportal/internal/logger"
	"jobportal/internal/redis"
)

type Infra struct {
	// Redis is nil when no REDIS_ADDR is configured; tokens then live in
	// process memory and do not survive a restart.
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("redis not configured, using in-memory token store", nil)
		return &Infra{}, nil
	}

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	return &Infra{Redis: redisClient}, nil
}

func (i *Infra) Close() error {
	if i.Redis != nil {
		return i.Redis.Close()
	}
	return nil
}
