package storage

import (
	"context"
	"fmt"
	"time"

	"portfolio_gallery/internal/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Client is the Redis connection behind the orphan ledger.
type Client struct {
	*redis.Client
}

func NewClient(cfg config.RedisConf) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
	}
}

// HealthCheck pings Redis, giving up after a few seconds.
func (c *Client) HealthCheck(ctx context.Context) error {
	const op = "storage.redis.HealthCheck"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
