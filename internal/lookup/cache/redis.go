package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"callerid_backend/internal/lookup/consolidate"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "callerid:lookup:"

// Redis is a Cache shared by every API instance.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a cache from a redis:// URL.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (consolidate.Candidates, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return consolidate.Candidates{}, false, nil
	}
	if err != nil {
		return consolidate.Candidates{}, false, fmt.Errorf("redis get: %w", err)
	}

	var c consolidate.Candidates
	if err := json.Unmarshal(data, &c); err != nil {
		return consolidate.Candidates{}, false, fmt.Errorf("decode cached candidates: %w", err)
	}
	return c, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, c consolidate.Candidates, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
