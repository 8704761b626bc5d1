package events

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fashionPulse/domain"
)

// normalize shape-checks one raw record and produces the canonical event. It
// returns every violation it finds, not just the first, so a rejected batch
// reports the full shape of the problem.
func normalize(index int, raw RawEvent) (domain.Event, []FieldError) {
	var errs []FieldError

	eventType := strings.TrimSpace(raw.Type)
	if eventType == "" {
		errs = append(errs, FieldError{Index: index, Field: "type", Reason: "type is required"})
	} else if !domain.KnownEventType(eventType) {
		errs = append(errs, FieldError{Index: index, Field: "type", Reason: "unknown event type"})
	}

	sessionID := strings.TrimSpace(raw.SessionID)
	if sessionID == "" {
		errs = append(errs, FieldError{Index: index, Field: "session_id", Reason: "session_id is required"})
	}

	ev := domain.Event{
		ID:        uuid.New().String(),
		ActorID:   strings.TrimSpace(raw.ActorID),
		SessionID: sessionID,
		Type:      eventType,
	}

	// Type-scoped payload checks only make sense once the type is known.
	if domain.KnownEventType(eventType) {
		errs = append(errs, normalizePayload(index, raw, &ev)...)
	}

	if raw.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC()
	} else if t, err := time.Parse(time.RFC3339, raw.OccurredAt); err != nil {
		errs = append(errs, FieldError{Index: index, Field: "occurred_at", Reason: "must be RFC 3339"})
	} else {
		ev.OccurredAt = t.UTC()
	}

	if len(raw.Context) > 0 {
		ev.Context = datatypes.JSONMap(raw.Context)
	}

	// A variant delivered in the exposure context is lifted to the typed
	// column so attribution and funnel queries never parse JSON.
	if ev.VariantID == "" {
		ev.VariantID = ev.ContextVariant()
	}

	return ev, errs
}

func normalizePayload(index int, raw RawEvent, ev *domain.Event) []FieldError {
	var errs []FieldError

	itemID := strings.TrimSpace(raw.ItemID)

	switch raw.Type {
	case domain.EventTypeImpression:
		ids := make([]string, 0, len(raw.ItemIDs))
		for _, id := range raw.ItemIDs {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
		if len(ids) == 0 {
			errs = append(errs, FieldError{Index: index, Field: "item_ids", Reason: "impression requires at least one item id"})
		}
		ev.ItemIDs = datatypes.NewJSONSlice(ids)

	case domain.EventTypeSearch:
		query := strings.TrimSpace(raw.SearchQuery)
		if query == "" {
			errs = append(errs, FieldError{Index: index, Field: "search_query", Reason: "search requires a query"})
		}
		ev.SearchQuery = query
		ev.ItemID = itemID

	default:
		if itemID == "" {
			errs = append(errs, FieldError{Index: index, Field: "item_id", Reason: "item_id is required"})
		}
		ev.ItemID = itemID
	}

	// Quantity and price are coerced, not rejected: a funnel row with a
	// defaulted quantity is worth more than a dropped batch.
	ev.Quantity = raw.Quantity
	if ev.Quantity < 1 {
		ev.Quantity = 1
	}

	if raw.Price != nil {
		p := *raw.Price
		if !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0 {
			ev.Price = raw.Price
		}
	}

	return errs
}
