package domain

// VariantFunnel holds the rolled-up funnel counts for one variant.
//
// Rates are intentionally not clamped: a rate above 1 means funnel events
// were attributed without a matching impression in the window, which is a
// diagnostic signal in itself. The raw counts are always present so the
// condition is self-explaining.
type VariantFunnel struct {
	Variant string `json:"variant"`

	Impressions        int64 `json:"impressions"`
	ImpressionSessions int64 `json:"impression_sessions"`
	ImpressionActors   int64 `json:"impression_actors"`

	Clicks       int64 `json:"clicks"`
	ClickedItems int64 `json:"clicked_items"`

	AddToCarts int64 `json:"add_to_carts"`
	AddedItems int64 `json:"added_items"`

	Purchases      int64   `json:"purchases"`
	PurchasedItems int64   `json:"purchased_items"`
	Revenue        float64 `json:"revenue"`

	CTR                  float64 `json:"ctr"`
	ATCRate              float64 `json:"atc_rate"`
	ConversionRate       float64 `json:"conversion_rate"`
	RevenuePerImpression float64 `json:"revenue_per_impression"`
}

// FunnelReport is the per-variant rollup plus a summary total.
type FunnelReport struct {
	Variants []VariantFunnel `json:"variants"`
	Total    VariantFunnel   `json:"total"`
}
