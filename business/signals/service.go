package signals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fashionPulse/domain"
	"fashionPulse/pkg/logger"
)

const (
	defaultPopularityLimit = 50
	maxPopularityLimit     = 200
	defaultAffinityLimit   = 100
	maxAffinityLimit       = 500
)

// EventRepository yields item-scoped behavioral events for aggregation.
// Passing an empty actorID returns events across all actors; a non-empty
// actorID restricts to that actor's history.
type EventRepository interface {
	EventsInWindow(ctx context.Context, window domain.TimeRange, actorID string) ([]domain.Event, error)
}

// ScoreCache holds previously aggregated score lists. Both methods are
// best-effort: a cache failure never fails the aggregation.
type ScoreCache interface {
	Get(ctx context.Context, key string) ([]domain.ItemScore, bool)
	Set(ctx context.Context, key string, scores []domain.ItemScore, ttl time.Duration)
}

type Service struct {
	eventRepo     EventRepository
	cache         ScoreCache
	weights       Weights
	popularityTTL time.Duration
	affinityTTL   time.Duration
}

func NewService(eventRepo EventRepository, cache ScoreCache, weights Weights, popularityTTL, affinityTTL time.Duration) *Service {
	return &Service{
		eventRepo:     eventRepo,
		cache:         cache,
		weights:       weights,
		popularityTTL: popularityTTL,
		affinityTTL:   affinityTTL,
	}
}

// Popularity aggregates weighted interaction counts per item across all
// actors in the window, descending. A non-positive limit falls back to the
// default; an oversized limit clamps to the maximum.
func (s *Service) Popularity(ctx context.Context, window domain.TimeRange, limit int) ([]domain.ItemScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	limit = clampLimit(limit, defaultPopularityLimit, maxPopularityLimit)

	key := popularityKey(window, limit)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	events, err := s.eventRepo.EventsInWindow(ctx, window, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load events for popularity: %w", err)
	}

	scores := s.aggregate(events)
	if len(scores) > limit {
		scores = scores[:limit]
	}

	s.cacheSet(ctx, key, scores, s.popularityTTL)

	return scores, nil
}

// Affinity aggregates weighted interaction counts per item for one actor,
// descending. The actor id is required.
func (s *Service) Affinity(ctx context.Context, actorID string, window domain.TimeRange, limit int) ([]domain.ItemScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", domain.ErrValidation)
	}

	limit = clampLimit(limit, defaultAffinityLimit, maxAffinityLimit)

	key := affinityKey(actorID, window, limit)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	events, err := s.eventRepo.EventsInWindow(ctx, window, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for affinity: %w", err)
	}

	scores := s.aggregate(events)
	if len(scores) > limit {
		scores = scores[:limit]
	}

	s.cacheSet(ctx, key, scores, s.affinityTTL)

	return scores, nil
}

// aggregate sums per-item weights over item-scoped events. Impressions and
// search events carry no item weight and are skipped. Ordering is score
// descending with item id as the tie-break so equal scores rank stably.
func (s *Service) aggregate(events []domain.Event) []domain.ItemScore {
	totals := make(map[string]float64)
	for _, ev := range events {
		if ev.ItemID == "" {
			continue
		}
		w := s.weights.For(ev.Type)
		if w == 0 {
			continue
		}
		totals[ev.ItemID] += w
	}

	scores := make([]domain.ItemScore, 0, len(totals))
	for itemID, score := range totals {
		scores = append(scores, domain.ItemScore{ItemID: itemID, Score: score})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].ItemID < scores[j].ItemID
	})

	return scores
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]domain.ItemScore, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key string, scores []domain.ItemScore, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	s.cache.Set(ctx, key, scores, ttl)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		logger.Debug("signal limit clamped", "requested", limit, "max", max)
		return max
	}
	return limit
}

func popularityKey(window domain.TimeRange, limit int) string {
	return fmt.Sprintf("popularity:scores:limit_%d:%s_%s", limit, boundKey(window.Start), boundKey(window.End))
}

func affinityKey(actorID string, window domain.TimeRange, limit int) string {
	return fmt.Sprintf("affinity:user:%s:limit_%d:%s_%s", actorID, limit, boundKey(window.Start), boundKey(window.End))
}

func boundKey(t *time.Time) string {
	if t == nil {
		return "any"
	}
	return t.UTC().Format("20060102T150405")
}

// ScoreMap flattens an ordered score list into a lookup map.
func ScoreMap(scores []domain.ItemScore) map[string]float64 {
	m := make(map[string]float64, len(scores))
	for _, s := range scores {
		m[s.ItemID] = s.Score
	}
	return m
}
