package experiment

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"fashionPulse/domain"
	"fashionPulse/pkg/logger"
)

// Assigner deterministically maps actor identities onto experiment variants.
// Determinism is the defining correctness property of the whole A/B
// measurement: the same identity must land in the same variant for the life
// of a set version, across processes and restarts.
type Assigner struct {
	cfgRepo  ConfigRepository
	defaults domain.VariantSet
}

func NewAssigner(cfgRepo ConfigRepository, defaults domain.VariantSet) *Assigner {
	if len(defaults.Variants) == 0 {
		defaults = DefaultVariantSet()
	}
	return &Assigner{
		cfgRepo:  cfgRepo,
		defaults: defaults,
	}
}

// ActiveSet returns the stored variant set, falling back to the compiled
// defaults when none is stored or the stored one fails validation.
func (a *Assigner) ActiveSet(ctx context.Context) domain.VariantSet {
	if a.cfgRepo == nil {
		return a.defaults
	}

	set, ok, err := a.cfgRepo.GetActiveSet(ctx)
	if err != nil || !ok {
		return a.defaults
	}

	if err := ValidateSet(set); err != nil {
		logger.Warn("stored variant set is invalid, using defaults", "version", set.Version, "error", err)
		return a.defaults
	}

	return set
}

// Assign maps an identity onto a variant: a durable actor id is preferred,
// falling back to the session id for anonymous actors.
func (a *Assigner) Assign(ctx context.Context, actorID, sessionID string) (domain.VariantAssignment, error) {
	if err := ctx.Err(); err != nil {
		return domain.VariantAssignment{}, fmt.Errorf("context error: %w", err)
	}

	identity := strings.TrimSpace(actorID)
	if identity == "" {
		identity = strings.TrimSpace(sessionID)
	}
	if identity == "" {
		return domain.VariantAssignment{}, fmt.Errorf("actor or session identity is required: %w", domain.ErrValidation)
	}

	set := a.ActiveSet(ctx)
	bucket := bucketOf(identity)

	return domain.VariantAssignment{
		Identity: identity,
		Bucket:   bucket,
		Variant:  variantFor(set, bucket),
	}, nil
}

// bucketOf hashes an identity into a point in [0,1). FNV-1a is stable across
// processes and Go versions, which is what keeps assignment reproducible.
func bucketOf(identity string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(identity))
	// Keep the top 53 bits so the quotient is exact in a float64.
	return float64(h.Sum64()>>11) / float64(1<<53)
}

// variantFor walks the cumulative traffic-share ranges. The last variant
// absorbs any floating-point dust so the ranges partition [0,1) exactly.
func variantFor(set domain.VariantSet, bucket float64) domain.VariantConfig {
	cumulative := 0.0
	for i, v := range set.Variants {
		cumulative += v.TrafficShare
		if bucket < cumulative || i == len(set.Variants)-1 {
			return v
		}
	}
	return set.Variants[len(set.Variants)-1]
}
