package repository

import (
	"context"

	redisapp "portfolio_gallery/internal/storage/redis"
)

const orphanSetKey = "gallery:orphans"

// RedisOrphanLedger keeps suspected orphan object keys in a Redis set.
type RedisOrphanLedger struct {
	Client *redisapp.Client
}

func NewRedisOrphanLedger(client *redisapp.Client) *RedisOrphanLedger {
	return &RedisOrphanLedger{Client: client}
}

func (r *RedisOrphanLedger) Mark(ctx context.Context, key string) error {
	return r.Client.SAdd(ctx, orphanSetKey, key).Err()
}

func (r *RedisOrphanLedger) List(ctx context.Context) ([]string, error) {
	return r.Client.SMembers(ctx, orphanSetKey).Result()
}

func (r *RedisOrphanLedger) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	members := make([]interface{}, len(keys))
	for i, key := range keys {
		members[i] = key
	}

	return r.Client.SRem(ctx, orphanSetKey, members...).Err()
}

// NopOrphanLedger is used when no Redis is configured.
type NopOrphanLedger struct{}

func (NopOrphanLedger) Mark(context.Context, string) error      { return nil }
func (NopOrphanLedger) List(context.Context) ([]string, error)  { return nil, nil }
func (NopOrphanLedger) Forget(context.Context, ...string) error { return nil }
