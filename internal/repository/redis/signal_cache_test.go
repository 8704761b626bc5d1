package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionPulse/domain"
)

func TestSignalCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewSignalCache(newTestClient(t))

	scores := []domain.ItemScore{
		{ItemID: "item-1", Score: 12.5},
		{ItemID: "item-2", Score: 3},
	}
	cache.Set(ctx, "popularity:scores:limit_50:any_any", scores, time.Hour)

	got, ok := cache.Get(ctx, "popularity:scores:limit_50:any_any")
	require.True(t, ok)
	assert.Equal(t, scores, got)
}

func TestSignalCacheMiss(t *testing.T) {
	cache := NewSignalCache(newTestClient(t))

	_, ok := cache.Get(context.Background(), "no-such-key")
	assert.False(t, ok)
}

func TestSignalCacheSurvivesBackendLoss(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := NewSignalCache(client)

	mr.Close()

	// Both operations must degrade silently, not panic or error out.
	cache.Set(ctx, "k", []domain.ItemScore{{ItemID: "a", Score: 1}}, time.Hour)
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestSignalCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := NewSignalCache(client)

	require.NoError(t, mr.Set("bad-key", "not json"))

	_, ok := cache.Get(ctx, "bad-key")
	assert.False(t, ok)
}
