package handlers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper tracks message ids that have already been processed.
type Deduper interface {
	// FirstSeen reports whether id has not been seen before, recording it
	// as seen either way.
	FirstSeen(ctx context.Context, id string) (bool, error)
}

const dedupeWindow = 24 * time.Hour

type RedisDeduper struct {
	client *redis.Client
}

func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.client.SetNX(ctx, "webhook_msg:"+id, "1", dedupeWindow).Result()
}
