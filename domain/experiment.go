package domain

// VariantUnknown is the pseudo-variant for events whose tag does not resolve
// to any configured variant. It is excluded from variant displays but never
// from raw event storage.
const VariantUnknown = "unknown"

// VariantConfig is one experiment arm: a scoring weight tuple plus the share
// of traffic it receives. Alpha weights similarity, Beta popularity, Gamma
// affinity; Alpha+Beta+Gamma must sum to 1.
type VariantConfig struct {
	Name         string  `json:"name"`
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
	Gamma        float64 `json:"gamma"`
	TrafficShare float64 `json:"traffic_share"`
}

// Weights returns the scoring tuple of the variant.
func (v VariantConfig) Weights() WeightTuple {
	return WeightTuple{Alpha: v.Alpha, Beta: v.Beta, Gamma: v.Gamma}
}

// VariantSet is the versioned, immutable set of variants for one experiment.
// Traffic shares must partition [0,1) exactly.
type VariantSet struct {
	Version  int             `json:"version"`
	Variants []VariantConfig `json:"variants"`
}

// VariantAssignment is the result of mapping an actor identity onto a
// variant. It is computed, never stored: the hash makes it reproducible.
type VariantAssignment struct {
	Identity string        `json:"identity"`
	Bucket   float64       `json:"bucket"`
	Variant  VariantConfig `json:"variant"`
}

// WeightTuple is the (alpha, beta, gamma) combination used by the hybrid
// scorer.
type WeightTuple struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}
