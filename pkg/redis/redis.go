package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainwatchhq/chainwatch/pkg/config"
	"github.com/chainwatchhq/chainwatch/pkg/resilience"
)

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// SetWithExpiration sets a key-value pair with expiration
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Set(ctx, key, value, expiration).Err()
}

// GetString gets a string value by key
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	return c.Get(ctx, key).Result()
}

// Delete deletes a key
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Del(ctx, keys...).Err()
}

// Exists checks if a key exists
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	result, err := c.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// ExecuteWithRetry runs op, retrying transient Redis failures with backoff
func (c *Client) ExecuteWithRetry(ctx context.Context, op func(ctx context.Context) error) error {
	cfg := resilience.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    50 * time.Millisecond,
		MaxBackoff:        500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		RetryableChecker:  isRedisRetryable,
	}
	_, err := resilience.Retry(ctx, cfg, func(ctx context.Context) (interface{}, error) {
		return nil, op(ctx)
	})
	return err
}

// isRedisRetryable reports whether a Redis error is worth retrying.
// Unknown errors are treated as retryable; Redis command/auth errors are not.
func isRedisRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return false
	}

	msg := strings.ToLower(err.Error())

	nonRetryable := []string{
		"wrongtype",
		"err syntax",
		"err invalid",
		"err unknown",
		"noauth",
		"wrongpass",
		"noperm",
		"execabort",
	}
	for _, s := range nonRetryable {
		if strings.Contains(msg, s) {
			return false
		}
	}

	retryable := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"temporary failure",
		"timeout",
		"server closed",
		"unexpected eof",
		"pool timeout",
		"connection pool exhausted",
		"loading",
		"busy",
		"masterdown",
		"readonly",
		"noscript",
		"moved",
		"ask",
		"tryagain",
		"clusterdown",
	}
	for _, s := range retryable {
		if strings.Contains(msg, s) {
			return true
		}
	}

	return true
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
