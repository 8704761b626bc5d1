package domain

const (
	RankingModePersonalized       = "personalized"
	RankingModePopularityFallback = "popularity_fallback"
)

// Candidate is an item proposed for ranking, carrying the externally supplied
// visual-similarity score.
type Candidate struct {
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
}

// RankedCandidate is one scored result with its per-dimension breakdown.
// The *Norm fields are min-max normalized over the candidate set.
type RankedCandidate struct {
	ItemID         string  `json:"item_id"`
	Score          float64 `json:"score"`
	Similarity     float64 `json:"similarity"`
	SimilarityNorm float64 `json:"similarity_norm"`
	Popularity     float64 `json:"popularity"`
	PopularityNorm float64 `json:"popularity_norm"`
	Affinity       float64 `json:"affinity"`
	AffinityNorm   float64 `json:"affinity_norm"`
}

// RankingResult reports the ranked candidates together with the mode used
// (personalized vs popularity fallback) and the variant whose weights were
// applied, so clients can tag exposure events.
type RankingResult struct {
	Mode       string            `json:"mode"`
	VariantID  string            `json:"variant_id"`
	Weights    WeightTuple       `json:"weights"`
	Candidates []RankedCandidate `json:"candidates"`
}
