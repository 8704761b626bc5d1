package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fashionPulse/domain"
	"fashionPulse/pkg/logger"
)

// SignalCache implements signals.ScoreCache on Redis. Every failure is
// swallowed after a log line: the cache is an accelerator, never a
// dependency, so aggregation must keep working without it.
type SignalCache struct {
	client *redis.Client
}

func NewSignalCache(client *redis.Client) *SignalCache {
	return &SignalCache{client: client}
}

func (c *SignalCache) Get(ctx context.Context, key string) ([]domain.ItemScore, bool) {
	jsonData, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug("signal cache get failed", "key", key, "error", err)
		return nil, false
	}

	var scores []domain.ItemScore
	if err := json.Unmarshal([]byte(jsonData), &scores); err != nil {
		logger.Debug("signal cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}

	return scores, true
}

func (c *SignalCache) Set(ctx context.Context, key string, scores []domain.ItemScore, ttl time.Duration) {
	jsonData, err := json.Marshal(scores)
	if err != nil {
		logger.Debug("signal cache marshal failed", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		logger.Debug("signal cache set failed", "key", key, "error", err)
	}
}
