package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionPulse/business/attribution"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func TestAttributionPutGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewAttributionRepository(newTestClient(t), time.Hour)

	entry := attribution.Entry{
		Variant:    "control",
		InsertedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Put(ctx, "sess-1", "item-1", entry))

	got, ok, err := repo.Get(ctx, "sess-1", "item-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "control", got.Variant)
	assert.True(t, got.InsertedAt.Equal(entry.InsertedAt))

	require.NoError(t, repo.Delete(ctx, "sess-1", "item-1"))

	_, ok, err = repo.Get(ctx, "sess-1", "item-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAttributionGetMissing(t *testing.T) {
	repo := NewAttributionRepository(newTestClient(t), time.Hour)

	_, ok, err := repo.Get(context.Background(), "sess-1", "no-such-item")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAttributionClearScopesToSession(t *testing.T) {
	ctx := context.Background()
	repo := NewAttributionRepository(newTestClient(t), time.Hour)

	entry := attribution.Entry{Variant: "control", InsertedAt: time.Now().UTC()}
	require.NoError(t, repo.Put(ctx, "sess-1", "item-1", entry))
	require.NoError(t, repo.Put(ctx, "sess-1", "item-2", entry))
	require.NoError(t, repo.Put(ctx, "sess-2", "item-1", entry))

	require.NoError(t, repo.Clear(ctx, "sess-1"))

	_, ok, err := repo.Get(ctx, "sess-1", "item-1")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = repo.Get(ctx, "sess-1", "item-2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.Get(ctx, "sess-2", "item-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttributionEntriesExpire(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	repo := NewAttributionRepository(client, time.Minute)

	entry := attribution.Entry{Variant: "control", InsertedAt: time.Now().UTC()}
	require.NoError(t, repo.Put(ctx, "sess-1", "item-1", entry))

	mr.FastForward(2 * time.Minute)

	_, ok, err := repo.Get(ctx, "sess-1", "item-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
