package scheduler

import (
	"context"
	"fmt"
	"time"

	"callerid_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	defaultQueue   = "default"
	refreshRetries = 3
	refreshTimeout = 30 * time.Second
)

type Client struct {
	client *asynq.Client
	queue  string
}

// RefreshEnqueuer queues lookup refreshes for the worker.
type RefreshEnqueuer interface {
	EnqueueLookupRefresh(ctx context.Context, payload LookupRefreshPayload) (string, error)
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  defaultQueue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLookupRefresh queues a refresh and returns the task ID.
func (c *Client) EnqueueLookupRefresh(ctx context.Context, payload LookupRefreshPayload) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("scheduler client not configured")
	}

	task, err := NewLookupRefreshTask(payload)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(refreshRetries),
		asynq.Timeout(refreshTimeout),
	)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
