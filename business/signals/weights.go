package signals

import "fashionPulse/domain"

// Weights maps behavioral event types to their contribution in popularity and
// affinity aggregation. Search events carry zero weight: query text feeds
// other surfaces, not item scoring.
type Weights struct {
	View      float64
	AddToCart float64
	Purchase  float64
	Wishlist  float64
	Search    float64
}

func DefaultWeights() Weights {
	return Weights{
		View:      1,
		AddToCart: 3,
		Purchase:  5,
		Wishlist:  2,
		Search:    0,
	}
}

// For returns the weight for an event type. Unknown and impression events
// contribute nothing.
func (w Weights) For(eventType string) float64 {
	switch eventType {
	case domain.EventTypeView:
		return w.View
	case domain.EventTypeAddToCart:
		return w.AddToCart
	case domain.EventTypePurchase:
		return w.Purchase
	case domain.EventTypeWishlist:
		return w.Wishlist
	case domain.EventTypeSearch:
		return w.Search
	default:
		return 0
	}
}
