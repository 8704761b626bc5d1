package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionPulse/domain"
)

type stubEventRepo struct {
	events []domain.Event
	err    error

	lastActorID string
}

func (s *stubEventRepo) EventsInWindow(_ context.Context, window domain.TimeRange, actorID string) ([]domain.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastActorID = actorID

	var out []domain.Event
	for _, ev := range s.events {
		if actorID != "" && ev.ActorID != actorID {
			continue
		}
		if window.Contains(ev.OccurredAt) {
			out = append(out, ev)
		}
	}
	return out, nil
}

type countingCache struct {
	entries map[string][]domain.ItemScore
	hits    int
	sets    int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string][]domain.ItemScore)}
}

func (c *countingCache) Get(_ context.Context, key string) ([]domain.ItemScore, bool) {
	scores, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return scores, ok
}

func (c *countingCache) Set(_ context.Context, key string, scores []domain.ItemScore, _ time.Duration) {
	c.sets++
	c.entries[key] = scores
}

func itemEvent(actorID, eventType, itemID string) domain.Event {
	return domain.Event{
		ActorID:    actorID,
		SessionID:  "sess",
		Type:       eventType,
		ItemID:     itemID,
		OccurredAt: time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestPopularityWeightedOrdering(t *testing.T) {
	// item-a: 2 views = 2. item-b: 1 purchase = 5. item-c: 1 atc + 1
	// wishlist = 5. Expect b before c (tie broken by id) before a.
	repo := &stubEventRepo{events: []domain.Event{
		itemEvent("u1", domain.EventTypeView, "item-a"),
		itemEvent("u2", domain.EventTypeView, "item-a"),
		itemEvent("u1", domain.EventTypePurchase, "item-b"),
		itemEvent("u2", domain.EventTypeAddToCart, "item-c"),
		itemEvent("u3", domain.EventTypeWishlist, "item-c"),
	}}
	svc := NewService(repo, nil, DefaultWeights(), 0, 0)

	scores, err := svc.Popularity(context.Background(), domain.TimeRange{}, 10)
	require.NoError(t, err)

	require.Len(t, scores, 3)
	assert.Equal(t, "item-b", scores[0].ItemID)
	assert.Equal(t, 5.0, scores[0].Score)
	assert.Equal(t, "item-c", scores[1].ItemID)
	assert.Equal(t, 5.0, scores[1].Score)
	assert.Equal(t, "item-a", scores[2].ItemID)
	assert.Equal(t, 2.0, scores[2].Score)
}

func TestPopularityIgnoresZeroWeightEvents(t *testing.T) {
	repo := &stubEventRepo{events: []domain.Event{
		itemEvent("u1", domain.EventTypeSearch, "item-a"),
		itemEvent("u1", domain.EventTypeView, "item-b"),
	}}
	svc := NewService(repo, nil, DefaultWeights(), 0, 0)

	scores, err := svc.Popularity(context.Background(), domain.TimeRange{}, 10)
	require.NoError(t, err)

	require.Len(t, scores, 1)
	assert.Equal(t, "item-b", scores[0].ItemID)
}

func TestPopularityLimitClamping(t *testing.T) {
	var events []domain.Event
	for i := 0; i < 300; i++ {
		events = append(events, itemEvent("u1", domain.EventTypeView, "item-"+string(rune('a'+i%26))+string(rune('0'+i/26))))
	}
	repo := &stubEventRepo{events: events}
	svc := NewService(repo, nil, DefaultWeights(), 0, 0)

	scores, err := svc.Popularity(context.Background(), domain.TimeRange{}, 9999)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(scores), maxPopularityLimit)

	// Zero falls back to the default, it is not "give me nothing".
	scores, err = svc.Popularity(context.Background(), domain.TimeRange{}, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(scores), defaultPopularityLimit)
	assert.NotEmpty(t, scores)
}

func TestPopularityWindowFiltering(t *testing.T) {
	inside := itemEvent("u1", domain.EventTypeView, "item-in")
	outside := itemEvent("u1", domain.EventTypeView, "item-out")
	outside.OccurredAt = inside.OccurredAt.Add(-48 * time.Hour)

	repo := &stubEventRepo{events: []domain.Event{inside, outside}}
	svc := NewService(repo, nil, DefaultWeights(), 0, 0)

	start := inside.OccurredAt.Add(-time.Hour)
	scores, err := svc.Popularity(context.Background(), domain.TimeRange{Start: &start}, 10)
	require.NoError(t, err)

	require.Len(t, scores, 1)
	assert.Equal(t, "item-in", scores[0].ItemID)
}

func TestPopularityUsesCache(t *testing.T) {
	repo := &stubEventRepo{events: []domain.Event{
		itemEvent("u1", domain.EventTypeView, "item-a"),
	}}
	cache := newCountingCache()
	svc := NewService(repo, cache, DefaultWeights(), time.Hour, time.Hour)

	_, err := svc.Popularity(context.Background(), domain.TimeRange{}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	repo.err = errors.New("db down")
	scores, err := svc.Popularity(context.Background(), domain.TimeRange{}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Len(t, scores, 1)
}

func TestAffinityRequiresActor(t *testing.T) {
	svc := NewService(&stubEventRepo{}, nil, DefaultWeights(), 0, 0)

	_, err := svc.Affinity(context.Background(), "", domain.TimeRange{}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAffinityScopedToActor(t *testing.T) {
	repo := &stubEventRepo{events: []domain.Event{
		itemEvent("u1", domain.EventTypePurchase, "item-a"),
		itemEvent("u2", domain.EventTypePurchase, "item-b"),
		itemEvent("u1", domain.EventTypeView, "item-b"),
	}}
	svc := NewService(repo, nil, DefaultWeights(), 0, 0)

	scores, err := svc.Affinity(context.Background(), "u1", domain.TimeRange{}, 10)
	require.NoError(t, err)
	assert.Equal(t, "u1", repo.lastActorID)

	require.Len(t, scores, 2)
	assert.Equal(t, "item-a", scores[0].ItemID)
	assert.Equal(t, 5.0, scores[0].Score)
	assert.Equal(t, "item-b", scores[1].ItemID)
	assert.Equal(t, 1.0, scores[1].Score)
}

func TestConfigurableWeightsChangeOrdering(t *testing.T) {
	repo := &stubEventRepo{events: []domain.Event{
		itemEvent("u1", domain.EventTypeAddToCart, "item-a"),
		itemEvent("u1", domain.EventTypePurchase, "item-b"),
	}}

	heavy := DefaultWeights()
	heavy.AddToCart = 10
	svc := NewService(repo, nil, heavy, 0, 0)

	scores, err := svc.Popularity(context.Background(), domain.TimeRange{}, 10)
	require.NoError(t, err)

	require.Len(t, scores, 2)
	assert.Equal(t, "item-a", scores[0].ItemID)
}
