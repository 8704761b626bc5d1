package experiment

import (
	"context"
	"fmt"
	"math"

	"fashionPulse/domain"
)

// Epsilon is the tolerance for every float invariant in this package:
// traffic-share partitions, weight-tuple sums, and tuple resolution.
const Epsilon = 1e-4

// DefaultVariantSet is the compiled-in experiment used when no set has been
// stored. Shares partition [0,1) exactly and every tuple sums to 1.
func DefaultVariantSet() domain.VariantSet {
	return domain.VariantSet{
		Version: 1,
		Variants: []domain.VariantConfig{
			{Name: "control", Alpha: 0.6, Beta: 0.3, Gamma: 0.1, TrafficShare: 0.34},
			{Name: "visual_heavy", Alpha: 0.8, Beta: 0.15, Gamma: 0.05, TrafficShare: 0.33},
			{Name: "personalized", Alpha: 0.5, Beta: 0.2, Gamma: 0.3, TrafficShare: 0.33},
		},
	}
}

// ValidateSet checks the experiment invariants: at least one variant, unique
// non-reserved names, positive shares summing to 1, and per-variant weight
// tuples summing to 1, all within Epsilon.
func ValidateSet(set domain.VariantSet) error {
	if len(set.Variants) == 0 {
		return fmt.Errorf("variant set has no variants: %w", domain.ErrValidation)
	}

	seen := make(map[string]struct{}, len(set.Variants))
	shareSum := 0.0
	for _, v := range set.Variants {
		if v.Name == "" || v.Name == domain.VariantUnknown {
			return fmt.Errorf("invalid variant name %q: %w", v.Name, domain.ErrValidation)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("duplicate variant name %q: %w", v.Name, domain.ErrValidation)
		}
		seen[v.Name] = struct{}{}

		if v.TrafficShare <= 0 {
			return fmt.Errorf("variant %q has non-positive traffic share: %w", v.Name, domain.ErrValidation)
		}
		shareSum += v.TrafficShare

		if err := ValidateTuple(v.Weights()); err != nil {
			return fmt.Errorf("variant %q: %w", v.Name, err)
		}
	}

	if math.Abs(shareSum-1) > Epsilon {
		return fmt.Errorf("traffic shares sum to %v, want 1: %w", shareSum, domain.ErrValidation)
	}

	return nil
}

// ValidateTuple checks that a weight tuple is non-negative and sums to 1
// within Epsilon.
func ValidateTuple(w domain.WeightTuple) error {
	if w.Alpha < 0 || w.Beta < 0 || w.Gamma < 0 {
		return fmt.Errorf("negative weight in tuple: %w", domain.ErrValidation)
	}
	if sum := w.Alpha + w.Beta + w.Gamma; math.Abs(sum-1) > Epsilon {
		return fmt.Errorf("weight tuple sums to %v, want 1: %w", sum, domain.ErrValidation)
	}
	return nil
}

// ConfigRepository reads and writes the versioned variant set.
type ConfigRepository interface {
	GetActiveSet(ctx context.Context) (domain.VariantSet, bool, error)
	SaveSet(ctx context.Context, set domain.VariantSet) error
}

// UnknownVariant is the pseudo-variant returned for unresolvable tags.
func UnknownVariant() domain.VariantConfig {
	return domain.VariantConfig{Name: domain.VariantUnknown}
}
