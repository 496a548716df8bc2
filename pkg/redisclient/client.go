package redisclient

import (
	"context"
	"time"

	"github.com/goldspin/casino-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client and verifies the connection
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
