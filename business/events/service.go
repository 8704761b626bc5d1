package events

import (
	"context"
	"fmt"
	"strings"

	"fashionPulse/domain"
	"fashionPulse/pkg/logger"
	"fashionPulse/pkg/metrics"
)

// RawEvent is one record exactly as a client submitted it, before
// normalization.
type RawEvent struct {
	Type        string                 `json:"type"`
	ActorID     string                 `json:"actor_id"`
	SessionID   string                 `json:"session_id"`
	ItemID      string                 `json:"item_id"`
	ItemIDs     []string               `json:"item_ids"`
	Quantity    int                    `json:"quantity"`
	Price       *float64               `json:"price"`
	SearchQuery string                 `json:"search_query"`
	OccurredAt  string                 `json:"occurred_at"`
	Context     map[string]interface{} `json:"context"`
}

// FieldError pins one shape violation to its record index.
type FieldError struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// BatchValidationError rejects a whole batch: the shape check is
// all-or-nothing so clients never have to reconcile a partially applied
// batch against per-record diagnostics.
type BatchValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("batch rejected with %d invalid record(s)", len(e.Errors))
}

func (e *BatchValidationError) Unwrap() error {
	return domain.ErrValidation
}

// EventRepository persists one normalized event.
type EventRepository interface {
	SaveEvent(ctx context.Context, event *domain.Event) error
}

// AttributionTagger bridges the ingest pipeline and the attribution tracker:
// exposure events write item to variant entries, later funnel events read
// them back.
type AttributionTagger interface {
	RecordExposure(ctx context.Context, sessionID, variant string, itemIDs ...string) error
	Lookup(ctx context.Context, sessionID, itemID string) (string, bool)
}

// IngestResult reports how a batch fared past the shape check. Accepted is
// the batch size; Stored counts records that made it to durable storage.
// Persistence is best-effort per record, so Stored may trail Accepted.
type IngestResult struct {
	Accepted int `json:"accepted"`
	Stored   int `json:"stored"`
}

type Service struct {
	eventRepo EventRepository
	tagger    AttributionTagger
}

func NewService(eventRepo EventRepository, tagger AttributionTagger) *Service {
	return &Service{
		eventRepo: eventRepo,
		tagger:    tagger,
	}
}

// IngestBatch validates, normalizes and persists a batch of raw events. The
// shape check runs over every record first and rejects the whole batch on
// any violation; after acceptance each record is stored independently and a
// storage failure on one never blocks the rest.
func (s *Service) IngestBatch(ctx context.Context, raw []RawEvent) (IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return IngestResult{}, fmt.Errorf("context error: %w", err)
	}

	if len(raw) == 0 {
		return IngestResult{}, fmt.Errorf("empty batch: %w", domain.ErrValidation)
	}

	var shapeErrors []FieldError
	normalized := make([]domain.Event, 0, len(raw))
	for i, r := range raw {
		ev, errs := normalize(i, r)
		if len(errs) > 0 {
			shapeErrors = append(shapeErrors, errs...)
			continue
		}
		normalized = append(normalized, ev)
	}

	if len(shapeErrors) > 0 {
		metrics.IngestRejectedBatches.Inc()
		return IngestResult{}, &BatchValidationError{Errors: shapeErrors}
	}

	result := IngestResult{Accepted: len(normalized)}
	for i := range normalized {
		s.applyAttribution(ctx, &normalized[i])

		if err := s.eventRepo.SaveEvent(ctx, &normalized[i]); err != nil {
			metrics.PersistFailures.Inc()
			logger.Error("failed to store event", "event_id", normalized[i].ID, "type", normalized[i].Type, "error", err)
			continue
		}
		EventsIngested.WithLabelValues(normalized[i].Type, ingestVariantLabel(normalized[i].VariantID)).Inc()
		result.Stored++
	}

	return result, nil
}

// applyAttribution runs the tag flow for one event. Exposure events
// (impressions, recommendation-sourced views) carrying a variant record their
// items into the session's attribution map; funnel events missing a variant
// get tagged from it. A tag the client sent explicitly always wins.
func (s *Service) applyAttribution(ctx context.Context, ev *domain.Event) {
	if s.tagger == nil {
		return
	}

	if ev.VariantID != "" && (ev.Type == domain.EventTypeImpression ||
		(ev.Type == domain.EventTypeView && ev.Source() == domain.SourceRecommendation)) {
		if err := s.tagger.RecordExposure(ctx, ev.SessionID, ev.VariantID, ev.Items()...); err != nil {
			logger.Warn("failed to record exposure from event", "event_id", ev.ID, "error", err)
		}
		return
	}

	if ev.VariantID != "" || ev.ItemID == "" {
		return
	}

	switch ev.Type {
	case domain.EventTypeView, domain.EventTypeAddToCart, domain.EventTypePurchase, domain.EventTypeWishlist:
	default:
		return
	}

	if variant, ok := s.tagger.Lookup(ctx, ev.SessionID, ev.ItemID); ok {
		ev.VariantID = variant
	}
}

func ingestVariantLabel(variantID string) string {
	if strings.TrimSpace(variantID) == "" {
		return "untagged"
	}
	return variantID
}
