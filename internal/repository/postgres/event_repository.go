package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fashionPulse/business/funnel"
	"fashionPulse/domain"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) SaveEvent(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

// EventsInWindow returns the item-scoped events in the window, optionally
// restricted to one actor. Impression and search rows carry no item weight
// and are filtered out at the database.
func (r *EventRepository) EventsInWindow(ctx context.Context, window domain.TimeRange, actorID string) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Where("item_id <> ''").
		Where("type IN ?", []string{
			domain.EventTypeView,
			domain.EventTypeAddToCart,
			domain.EventTypePurchase,
			domain.EventTypeWishlist,
		})
	q = applyWindow(q, window)
	if actorID != "" {
		q = q.Where("actor_id = ?", actorID)
	}

	var events []domain.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return events, nil
}

// ---- Funnel slices ----

// variantSliceRow matches the SELECT list shared by the four stage queries.
type variantSliceRow struct {
	Variant  string
	Count    int64
	Sessions int64
	Actors   int64
	Items    int64
	Revenue  float64
}

func (r *EventRepository) ImpressionsByVariant(ctx context.Context, window domain.TimeRange) ([]funnel.VariantSlice, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Select("variant_id AS variant, COUNT(*) AS count, COUNT(DISTINCT session_id) AS sessions, COUNT(DISTINCT NULLIF(actor_id, '')) AS actors").
		Where("type = ?", domain.EventTypeImpression)
	q = applyWindow(q, window)

	return r.scanSlices(q, "impressions")
}

// ClicksByVariant counts views sourced from a rendered recommendation list.
// Plain catalog views carry no recommendation source and are excluded.
func (r *EventRepository) ClicksByVariant(ctx context.Context, window domain.TimeRange) ([]funnel.VariantSlice, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Select("variant_id AS variant, COUNT(*) AS count, COUNT(DISTINCT item_id) AS items").
		Where("type = ?", domain.EventTypeView).
		Where("context ->> 'source' = ?", domain.SourceRecommendation)
	q = applyWindow(q, window)

	return r.scanSlices(q, "clicks")
}

func (r *EventRepository) AddToCartsByVariant(ctx context.Context, window domain.TimeRange) ([]funnel.VariantSlice, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Select("variant_id AS variant, COUNT(*) AS count, COUNT(DISTINCT item_id) AS items").
		Where("type = ?", domain.EventTypeAddToCart)
	q = applyWindow(q, window)

	return r.scanSlices(q, "add_to_carts")
}

func (r *EventRepository) PurchasesByVariant(ctx context.Context, window domain.TimeRange) ([]funnel.VariantSlice, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Select("variant_id AS variant, COUNT(*) AS count, COUNT(DISTINCT item_id) AS items, SUM(COALESCE(price, 0) * GREATEST(quantity, 1)) AS revenue").
		Where("type = ?", domain.EventTypePurchase)
	q = applyWindow(q, window)

	return r.scanSlices(q, "purchases")
}

func (r *EventRepository) scanSlices(q *gorm.DB, stage string) ([]funnel.VariantSlice, error) {
	var rows []variantSliceRow
	if err := q.Group("variant_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", stage, err)
	}

	slices := make([]funnel.VariantSlice, len(rows))
	for i, row := range rows {
		slices[i] = funnel.VariantSlice{
			Variant:  row.Variant,
			Count:    row.Count,
			Sessions: row.Sessions,
			Actors:   row.Actors,
			Items:    row.Items,
			Revenue:  row.Revenue,
		}
	}

	return slices, nil
}

func applyWindow(q *gorm.DB, window domain.TimeRange) *gorm.DB {
	if window.Start != nil {
		q = q.Where("occurred_at >= ?", *window.Start)
	}
	if window.End != nil {
		q = q.Where("occurred_at <= ?", *window.End)
	}
	return q
}
