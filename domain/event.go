package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventTypeView       = "view"
	EventTypeAddToCart  = "add_to_cart"
	EventTypePurchase   = "purchase"
	EventTypeWishlist   = "wishlist"
	EventTypeSearch     = "search"
	EventTypeImpression = "impression"
)

// KnownEventType reports whether t is one of the accepted event types.
func KnownEventType(t string) bool {
	switch t {
	case EventTypeView, EventTypeAddToCart, EventTypePurchase,
		EventTypeWishlist, EventTypeSearch, EventTypeImpression:
		return true
	}
	return false
}

// Exposure-context keys carried in the JSONB context column.
const (
	CtxSource  = "source"
	CtxVariant = "variant"
)

// SourceRecommendation marks events rendered directly from a ranked list.
const SourceRecommendation = "recommendation"

// Event is one immutable behavioral fact. Rows are append-only: this core
// never updates or deletes them.
//
// The payload is type-scoped: impressions carry ItemIDs, searches carry
// SearchQuery, the item-scoped types (view, add_to_cart, purchase, wishlist)
// carry ItemID. The normalizer enforces this per type on ingestion.
type Event struct {
	ID        string `gorm:"primaryKey;column:id" json:"id"`
	ActorID   string `gorm:"column:actor_id;index" json:"actor_id,omitempty"`
	SessionID string `gorm:"column:session_id;not null;index" json:"session_id"`
	Type      string `gorm:"column:type;not null;index" json:"type"`

	ItemID      string                      `gorm:"column:item_id;index" json:"item_id,omitempty"`
	ItemIDs     datatypes.JSONSlice[string] `gorm:"column:item_ids;type:jsonb" json:"item_ids,omitempty"`
	VariantID   string                      `gorm:"column:variant_id;index" json:"variant_id,omitempty"`
	Quantity    int                         `gorm:"column:quantity;default:1" json:"quantity"`
	Price       *float64                    `gorm:"column:price" json:"price,omitempty"`
	SearchQuery string                      `gorm:"column:search_query" json:"search_query,omitempty"`

	// Exposure context: device, geo, page, referrer, source, variant, position.
	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context,omitempty"`

	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	ReceivedAt time.Time `gorm:"column:received_at;autoCreateTime" json:"received_at"`
}

func (Event) TableName() string {
	return "events"
}

// Items returns every item id the event references, regardless of type.
func (e Event) Items() []string {
	if e.Type == EventTypeImpression {
		return e.ItemIDs
	}
	if e.ItemID != "" {
		return []string{e.ItemID}
	}
	return nil
}

// Source returns the exposure source from the context, if any.
func (e Event) Source() string {
	if v, ok := e.Context[CtxSource].(string); ok {
		return v
	}
	return ""
}

// ContextVariant returns the variant tag embedded in the exposure context.
func (e Event) ContextVariant() string {
	if v, ok := e.Context[CtxVariant].(string); ok {
		return v
	}
	return ""
}

// TimeRange restricts aggregate queries; a nil bound is unbounded.
type TimeRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}
