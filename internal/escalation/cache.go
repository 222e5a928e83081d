package escalation

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/pkg/logger"
	"github.com/chainwatchhq/chainwatch/pkg/redis"
)

const (
	freezeKeyPrefix = "entity:frozen:"
	freezeCacheTTL  = 5 * time.Minute
)

// RedisFreezeCache caches freeze flags in Redis. All operations are
// best-effort: failures are logged and the caller falls back to Postgres.
type RedisFreezeCache struct {
	client *redis.Client
}

var _ FreezeCache = (*RedisFreezeCache)(nil)

// NewRedisFreezeCache creates a freeze cache on the given Redis client
func NewRedisFreezeCache(client *redis.Client) *RedisFreezeCache {
	return &RedisFreezeCache{client: client}
}

// GetFrozen returns the cached flag and whether it was present
func (c *RedisFreezeCache) GetFrozen(ctx context.Context, entityID string) (bool, bool) {
	var value string
	err := c.client.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		var err error
		value, err = c.client.GetString(ctx, freezeKeyPrefix+entityID)
		return err
	})
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.WithContext(ctx).Warn("Freeze cache read failed",
				zap.String("entity_id", entityID), zap.Error(err))
		}
		return false, false
	}
	return value == "1", true
}

// SetFrozen caches the flag with a TTL
func (c *RedisFreezeCache) SetFrozen(ctx context.Context, entityID string, frozen bool) {
	value := "0"
	if frozen {
		value = "1"
	}
	err := c.client.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return c.client.SetWithExpiration(ctx, freezeKeyPrefix+entityID, value, freezeCacheTTL)
	})
	if err != nil {
		logger.WithContext(ctx).Warn("Freeze cache write failed",
			zap.String("entity_id", entityID), zap.Error(err))
	}
}

// Invalidate drops the cached flag after a freeze state change
func (c *RedisFreezeCache) Invalidate(ctx context.Context, entityID string) {
	err := c.client.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return c.client.Delete(ctx, freezeKeyPrefix+entityID)
	})
	if err != nil {
		logger.WithContext(ctx).Warn("Freeze cache invalidation failed",
			zap.String("entity_id", entityID), zap.Error(err))
	}
}

// noopFreezeCache satisfies FreezeCache when Redis is not configured
type noopFreezeCache struct{}

// NewNoopFreezeCache returns a cache that never hits
func NewNoopFreezeCache() FreezeCache {
	return noopFreezeCache{}
}

func (noopFreezeCache) GetFrozen(context.Context, string) (bool, bool) { return false, false }
func (noopFreezeCache) SetFrozen(context.Context, string, bool)       {}
func (noopFreezeCache) Invalidate(context.Context, string)            {}
