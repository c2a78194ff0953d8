package redis

import (
	"context"

	"tower-takeoff/common/config"

	"github.com/go-redis/redis/v8"
)

// Client is an alias so callers do not import go-redis directly.
type Client = redis.Client

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
