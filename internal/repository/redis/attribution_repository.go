package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fashionPulse/business/attribution"
)

// AttributionRepository implements attribution.Store on Redis. The tracker
// already enforces its own TTL on read; the Redis expiry is a safety net that
// keeps abandoned sessions from accumulating.
type AttributionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttributionRepository(client *redis.Client, ttl time.Duration) *AttributionRepository {
	if ttl <= 0 {
		ttl = attribution.DefaultTTL
	}
	return &AttributionRepository{
		client: client,
		ttl:    ttl,
	}
}

// key format: "attr:sess:{session_id}:item:{item_id}"
func attributionKey(sessionID, itemID string) string {
	return fmt.Sprintf("attr:sess:%s:item:%s", sessionID, itemID)
}

func (r *AttributionRepository) Put(ctx context.Context, sessionID, itemID string, entry attribution.Entry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal attribution entry: %w", err)
	}

	err = r.client.Set(ctx, attributionKey(sessionID, itemID), jsonData, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store attribution entry: %w", err)
	}

	return nil
}

func (r *AttributionRepository) Get(ctx context.Context, sessionID, itemID string) (attribution.Entry, bool, error) {
	jsonData, err := r.client.Get(ctx, attributionKey(sessionID, itemID)).Result()
	if errors.Is(err, redis.Nil) {
		return attribution.Entry{}, false, nil
	}
	if err != nil {
		return attribution.Entry{}, false, fmt.Errorf("failed to get attribution entry: %w", err)
	}

	var entry attribution.Entry
	if err := json.Unmarshal([]byte(jsonData), &entry); err != nil {
		return attribution.Entry{}, false, fmt.Errorf("failed to unmarshal attribution entry: %w", err)
	}

	return entry, true, nil
}

func (r *AttributionRepository) Delete(ctx context.Context, sessionID, itemID string) error {
	if err := r.client.Del(ctx, attributionKey(sessionID, itemID)).Err(); err != nil {
		return fmt.Errorf("failed to delete attribution entry: %w", err)
	}

	return nil
}

// Clear removes every entry for one session via SCAN so large sessions never
// block the server the way KEYS would.
func (r *AttributionRepository) Clear(ctx context.Context, sessionID string) error {
	pattern := fmt.Sprintf("attr:sess:%s:item:*", sessionID)

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete attribution entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan attribution entries: %w", err)
	}

	return nil
}
