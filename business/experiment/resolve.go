package experiment

import (
	"context"
	"math"
	"strconv"
	"strings"

	"fashionPulse/domain"
)

// Resolve maps a variant identifier found on an event back to a configured
// variant. Exposure tags are sometimes the variant name and sometimes a
// formatted weight tuple (e.g. "0.6-0.3-0.1"), so resolution tries an exact
// name match first, then an epsilon-tolerant numeric match against each
// configured tuple to absorb floating-point formatting differences.
// Anything else resolves to the "unknown" pseudo-variant.
func (a *Assigner) Resolve(ctx context.Context, id string) domain.VariantConfig {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownVariant()
	}

	set := a.ActiveSet(ctx)
	for _, v := range set.Variants {
		if v.Name == id {
			return v
		}
	}

	tuple, ok := parseTuple(id)
	if !ok {
		return UnknownVariant()
	}

	for _, v := range set.Variants {
		if tupleMatches(v.Weights(), tuple) {
			return v
		}
	}

	return UnknownVariant()
}

func parseTuple(id string) (domain.WeightTuple, bool) {
	sep := "-"
	switch {
	case strings.Contains(id, ","):
		sep = ","
	case strings.Contains(id, "_"):
		sep = "_"
	}

	parts := strings.Split(id, sep)
	if len(parts) != 3 {
		return domain.WeightTuple{}, false
	}

	var vals [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.WeightTuple{}, false
		}
		vals[i] = f
	}

	return domain.WeightTuple{Alpha: vals[0], Beta: vals[1], Gamma: vals[2]}, true
}

func tupleMatches(a, b domain.WeightTuple) bool {
	return math.Abs(a.Alpha-b.Alpha) <= Epsilon &&
		math.Abs(a.Beta-b.Beta) <= Epsilon &&
		math.Abs(a.Gamma-b.Gamma) <= Epsilon
}
