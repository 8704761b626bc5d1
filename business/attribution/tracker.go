package attribution

import (
	"context"
	"fmt"
	"time"

	"fashionPulse/pkg/logger"
	"fashionPulse/pkg/metrics"
)

// DefaultTTL is the maximum age at which an attribution entry still tags a
// funnel event.
const DefaultTTL = 7 * 24 * time.Hour

// Entry records which variant exposed an item to a session.
type Entry struct {
	Variant    string    `json:"variant"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Store is the session-scoped TTL key-value surface the tracker runs on.
// Sessions are fully isolated namespaces; the tracker owns the TTL and
// last-write-wins rules, a Store only holds entries.
type Store interface {
	Put(ctx context.Context, sessionID, itemID string, entry Entry) error
	Get(ctx context.Context, sessionID, itemID string) (Entry, bool, error)
	Delete(ctx context.Context, sessionID, itemID string) error
	Clear(ctx context.Context, sessionID string) error
}

// Tracker bridges attribution across temporally disconnected events: an item
// shown once may be added to cart or purchased days later, in a request that
// does not carry the original variant tag. Contract (not implementation
// detail): entries live for the TTL, repeated exposures of the same item are
// last-write-wins, eviction is lazy (staleness checked only on read or
// overwrite), and an explicit session end clears that session's map.
type Tracker struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewTracker(store Store, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// RecordExposure records (or overwrites) item -> variant for every item in a
// ranked exposure.
func (t *Tracker) RecordExposure(ctx context.Context, sessionID, variant string, itemIDs ...string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if sessionID == "" || variant == "" {
		return nil
	}

	entry := Entry{Variant: variant, InsertedAt: t.now()}
	for _, itemID := range itemIDs {
		if itemID == "" {
			continue
		}
		if err := t.store.Put(ctx, sessionID, itemID, entry); err != nil {
			return fmt.Errorf("failed to record exposure for item %s: %w", itemID, err)
		}
	}

	return nil
}

// Lookup returns the variant that exposed an item to this session, if a live
// entry exists. Stale entries are evicted on read; store failures count as a
// miss because attribution is best-effort by contract.
func (t *Tracker) Lookup(ctx context.Context, sessionID, itemID string) (string, bool) {
	if sessionID == "" || itemID == "" {
		metrics.AttributionMisses.Inc()
		return "", false
	}

	entry, ok, err := t.store.Get(ctx, sessionID, itemID)
	if err != nil {
		logger.Warn("attribution lookup failed", "session_id", sessionID, "item_id", itemID, "error", err)
		metrics.AttributionMisses.Inc()
		return "", false
	}
	if !ok {
		metrics.AttributionMisses.Inc()
		return "", false
	}

	if t.now().Sub(entry.InsertedAt) > t.ttl {
		// lazy eviction
		if err := t.store.Delete(ctx, sessionID, itemID); err != nil {
			logger.Debug("failed to evict stale attribution entry", "session_id", sessionID, "item_id", itemID, "error", err)
		}
		metrics.AttributionMisses.Inc()
		return "", false
	}

	metrics.AttributionHits.Inc()
	return entry.Variant, true
}

// EndSession clears every entry for a session.
func (t *Tracker) EndSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if sessionID == "" {
		return nil
	}

	if err := t.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}

	return nil
}
