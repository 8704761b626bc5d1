package funnel

import (
	"context"
	"fmt"
	"sort"

	"fashionPulse/domain"
)

// VariantSlice is one stage's counts grouped by raw variant tag, before
// resolution. Count is total events; Sessions, Actors and Items are distinct
// counts; Revenue only applies to the purchase slice.
type VariantSlice struct {
	Variant  string
	Count    int64
	Sessions int64
	Actors   int64
	Items    int64
	Revenue  float64
}

// FunnelRepository yields per-stage, per-variant aggregates over a window.
// Clicks are views that carried a recommendation exposure source.
type FunnelRepository interface {
	ImpressionsByVariant(ctx context.Context, window domain.TimeRange) ([]VariantSlice, error)
	ClicksByVariant(ctx context.Context, window domain.TimeRange) ([]VariantSlice, error)
	AddToCartsByVariant(ctx context.Context, window domain.TimeRange) ([]VariantSlice, error)
	PurchasesByVariant(ctx context.Context, window domain.TimeRange) ([]VariantSlice, error)
}

// VariantResolver canonicalizes raw variant tags (names or weight tuples)
// back onto configured variants.
type VariantResolver interface {
	Resolve(ctx context.Context, id string) domain.VariantConfig
}

// Query restricts the rollup. Variant, when set, filters the report to one
// canonical variant after merging.
type Query struct {
	Window  domain.TimeRange
	Variant string
}

type Service struct {
	funnelRepo FunnelRepository
	resolver   VariantResolver
}

func NewService(funnelRepo FunnelRepository, resolver VariantResolver) *Service {
	return &Service{
		funnelRepo: funnelRepo,
		resolver:   resolver,
	}
}

// Aggregate merges the four stage slices into a per-variant funnel report.
// The merge is a left outer join on canonical variant: a variant with
// impressions but no purchases still appears with zeroed later stages, and a
// stage row whose tag resolves to no configured variant is dropped rather
// than invented as its own arm. Rates divide by impressions and are zero
// when there are none.
func (s *Service) Aggregate(ctx context.Context, q Query) (domain.FunnelReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.FunnelReport{}, fmt.Errorf("context error: %w", err)
	}

	impressions, err := s.funnelRepo.ImpressionsByVariant(ctx, q.Window)
	if err != nil {
		return domain.FunnelReport{}, fmt.Errorf("failed to aggregate impressions: %w", err)
	}
	clicks, err := s.funnelRepo.ClicksByVariant(ctx, q.Window)
	if err != nil {
		return domain.FunnelReport{}, fmt.Errorf("failed to aggregate clicks: %w", err)
	}
	addToCarts, err := s.funnelRepo.AddToCartsByVariant(ctx, q.Window)
	if err != nil {
		return domain.FunnelReport{}, fmt.Errorf("failed to aggregate add-to-carts: %w", err)
	}
	purchases, err := s.funnelRepo.PurchasesByVariant(ctx, q.Window)
	if err != nil {
		return domain.FunnelReport{}, fmt.Errorf("failed to aggregate purchases: %w", err)
	}

	byVariant := make(map[string]*domain.VariantFunnel)

	s.merge(ctx, byVariant, impressions, func(f *domain.VariantFunnel, sl VariantSlice) {
		f.Impressions += sl.Count
		f.ImpressionSessions += sl.Sessions
		f.ImpressionActors += sl.Actors
	})
	s.merge(ctx, byVariant, clicks, func(f *domain.VariantFunnel, sl VariantSlice) {
		f.Clicks += sl.Count
		f.ClickedItems += sl.Items
	})
	s.merge(ctx, byVariant, addToCarts, func(f *domain.VariantFunnel, sl VariantSlice) {
		f.AddToCarts += sl.Count
		f.AddedItems += sl.Items
	})
	s.merge(ctx, byVariant, purchases, func(f *domain.VariantFunnel, sl VariantSlice) {
		f.Purchases += sl.Count
		f.PurchasedItems += sl.Items
		f.Revenue += sl.Revenue
	})

	report := domain.FunnelReport{Total: domain.VariantFunnel{Variant: "total"}}
	for name, f := range byVariant {
		if q.Variant != "" && name != q.Variant {
			continue
		}
		computeRates(f)
		accumulateTotal(&report.Total, f)
		report.Variants = append(report.Variants, *f)
	}
	computeRates(&report.Total)

	sort.Slice(report.Variants, func(i, j int) bool {
		return report.Variants[i].Variant < report.Variants[j].Variant
	})

	return report, nil
}

func (s *Service) merge(ctx context.Context, byVariant map[string]*domain.VariantFunnel, slices []VariantSlice, apply func(*domain.VariantFunnel, VariantSlice)) {
	for _, sl := range slices {
		name := s.canonical(ctx, sl.Variant)
		if name == domain.VariantUnknown {
			continue
		}
		f, ok := byVariant[name]
		if !ok {
			f = &domain.VariantFunnel{Variant: name}
			byVariant[name] = f
		}
		apply(f, sl)
	}
}

func (s *Service) canonical(ctx context.Context, tag string) string {
	if s.resolver == nil {
		if tag == "" {
			return domain.VariantUnknown
		}
		return tag
	}
	return s.resolver.Resolve(ctx, tag).Name
}

func computeRates(f *domain.VariantFunnel) {
	if f.Impressions == 0 {
		return
	}
	imp := float64(f.Impressions)
	f.CTR = float64(f.Clicks) / imp
	f.ATCRate = float64(f.AddToCarts) / imp
	f.ConversionRate = float64(f.Purchases) / imp
	f.RevenuePerImpression = f.Revenue / imp
}

func accumulateTotal(total, f *domain.VariantFunnel) {
	total.Impressions += f.Impressions
	total.ImpressionSessions += f.ImpressionSessions
	total.ImpressionActors += f.ImpressionActors
	total.Clicks += f.Clicks
	total.ClickedItems += f.ClickedItems
	total.AddToCarts += f.AddToCarts
	total.AddedItems += f.AddedItems
	total.Purchases += f.Purchases
	total.PurchasedItems += f.PurchasedItems
	total.Revenue += f.Revenue
}
