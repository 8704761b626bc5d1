package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fashionPulse/business/experiment"
	"fashionPulse/business/signals"
	"fashionPulse/domain"
	"fashionPulse/pkg/logger"
	"fashionPulse/pkg/metrics"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// Similarity pools are fetched oversized so that popularity and
	// affinity can promote items the similarity ordering alone would
	// have cut.
	poolFactor = 3

	// Popularity looks at recent traffic only; affinity uses the full
	// actor history.
	popularityWindow = 30 * 24 * time.Hour
)

// SimilarityRepository is the outbound visual-similarity surface.
type SimilarityRepository interface {
	SimilarCandidates(ctx context.Context, seedItems []string, limit int) ([]domain.Candidate, error)
}

// SignalProvider supplies the behavioral score dimensions.
type SignalProvider interface {
	Popularity(ctx context.Context, window domain.TimeRange, limit int) ([]domain.ItemScore, error)
	Affinity(ctx context.Context, actorID string, window domain.TimeRange, limit int) ([]domain.ItemScore, error)
}

// CatalogRepository enumerates active items, used only when the popularity
// fallback itself comes up empty.
type CatalogRepository interface {
	ActiveItemIDs(ctx context.Context) ([]string, error)
}

// ExposureRecorder tags the session with the variant that produced a ranked
// list, so later funnel events can be attributed.
type ExposureRecorder interface {
	RecordExposure(ctx context.Context, sessionID, variant string, itemIDs ...string) error
}

// Request carries one ranking call. SeedItems empty means cold start. A
// non-nil Override replaces the assigned variant's weight tuple and is
// reported back as the formatted tuple instead of a variant name.
type Request struct {
	ActorID   string
	SessionID string
	SeedItems []string
	Override  *domain.WeightTuple
	Limit     int
}

type Service struct {
	similarityRepo SimilarityRepository
	signalProvider SignalProvider
	catalogRepo    CatalogRepository
	assigner       *experiment.Assigner
	exposures      ExposureRecorder
}

func NewService(similarityRepo SimilarityRepository, signalProvider SignalProvider, catalogRepo CatalogRepository, assigner *experiment.Assigner, exposures ExposureRecorder) *Service {
	return &Service{
		similarityRepo: similarityRepo,
		signalProvider: signalProvider,
		catalogRepo:    catalogRepo,
		assigner:       assigner,
		exposures:      exposures,
	}
}

// Rank produces the blended recommendation list for one request. With seed
// items it scores a similarity pool on similarity, popularity and affinity
// under the variant's (or overridden) weight tuple; without seeds it degrades
// to pure popularity and says so in the result mode.
func (s *Service) Rank(ctx context.Context, req Request) (domain.RankingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RankingResult{}, fmt.Errorf("context error: %w", err)
	}

	timer := metrics.NewRecommendTimer()
	defer timer.ObserveDuration()

	assignment, err := s.assigner.Assign(ctx, req.ActorID, req.SessionID)
	if err != nil {
		return domain.RankingResult{}, err
	}

	weights := assignment.Variant.Weights()
	variantID := assignment.Variant.Name
	if req.Override != nil {
		if err := experiment.ValidateTuple(*req.Override); err != nil {
			return domain.RankingResult{}, err
		}
		weights = *req.Override
		variantID = fmt.Sprintf("%g-%g-%g", weights.Alpha, weights.Beta, weights.Gamma)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var result domain.RankingResult
	if len(req.SeedItems) == 0 {
		result, err = s.rankFallback(ctx, variantID, limit)
	} else {
		result, err = s.rankPersonalized(ctx, req, weights, variantID, limit)
	}
	if err != nil {
		return domain.RankingResult{}, err
	}

	metrics.RecommendTotal.WithLabelValues(result.Mode).Inc()
	s.recordExposure(ctx, req.SessionID, result)

	return result, nil
}

func (s *Service) rankPersonalized(ctx context.Context, req Request, weights domain.WeightTuple, variantID string, limit int) (domain.RankingResult, error) {
	pool, err := s.similarityRepo.SimilarCandidates(ctx, req.SeedItems, limit*poolFactor)
	if err != nil {
		return domain.RankingResult{}, fmt.Errorf("failed to fetch similarity candidates: %w", err)
	}
	if len(pool) == 0 {
		return s.rankFallback(ctx, variantID, limit)
	}

	popularity, err := s.signalProvider.Popularity(ctx, recentWindow(), maxPopularityFetch)
	if err != nil {
		return domain.RankingResult{}, fmt.Errorf("failed to fetch popularity signals: %w", err)
	}
	popScores := signals.ScoreMap(popularity)

	affScores := map[string]float64{}
	if req.ActorID != "" {
		affinity, err := s.signalProvider.Affinity(ctx, req.ActorID, domain.TimeRange{}, maxAffinityFetch)
		if err != nil {
			return domain.RankingResult{}, fmt.Errorf("failed to fetch affinity signals: %w", err)
		}
		affScores = signals.ScoreMap(affinity)
	}

	candidates := scoreCandidates(pool, popScores, affScores, weights)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return domain.RankingResult{
		Mode:       domain.RankingModePersonalized,
		VariantID:  variantID,
		Weights:    weights,
		Candidates: candidates,
	}, nil
}

// rankFallback serves pure popularity, reported as the fallback mode with a
// (0,1,0) tuple regardless of the variant's configured weights. The variant
// id is kept so exposure attribution still works for cold-start traffic.
func (s *Service) rankFallback(ctx context.Context, variantID string, limit int) (domain.RankingResult, error) {
	popularity, err := s.signalProvider.Popularity(ctx, recentWindow(), limit)
	if err != nil {
		return domain.RankingResult{}, fmt.Errorf("failed to fetch popularity fallback: %w", err)
	}

	candidates := make([]domain.RankedCandidate, 0, len(popularity))
	norms := make([]float64, len(popularity))
	for i, p := range popularity {
		norms[i] = p.Score
	}
	norms = minMaxNormalize(norms)
	for i, p := range popularity {
		candidates = append(candidates, domain.RankedCandidate{
			ItemID:         p.ItemID,
			Score:          norms[i],
			Popularity:     p.Score,
			PopularityNorm: norms[i],
		})
	}

	if len(candidates) == 0 && s.catalogRepo != nil {
		itemIDs, err := s.catalogRepo.ActiveItemIDs(ctx)
		if err != nil {
			logger.Warn("catalog fallback failed", "error", err)
		} else {
			if len(itemIDs) > limit {
				itemIDs = itemIDs[:limit]
			}
			for _, id := range itemIDs {
				candidates = append(candidates, domain.RankedCandidate{ItemID: id})
			}
		}
	}

	return domain.RankingResult{
		Mode:       domain.RankingModePopularityFallback,
		VariantID:  variantID,
		Weights:    domain.WeightTuple{Beta: 1},
		Candidates: candidates,
	}, nil
}

const (
	maxPopularityFetch = 200
	maxAffinityFetch   = 500
)

// scoreCandidates min-max normalizes each dimension over the pool, blends
// them under the weight tuple and orders by score descending. sort.SliceStable
// preserves the similarity service's ordering for exact ties.
func scoreCandidates(pool []domain.Candidate, popScores, affScores map[string]float64, weights domain.WeightTuple) []domain.RankedCandidate {
	sims := make([]float64, len(pool))
	pops := make([]float64, len(pool))
	affs := make([]float64, len(pool))
	for i, c := range pool {
		sims[i] = c.Similarity
		pops[i] = popScores[c.ItemID]
		affs[i] = affScores[c.ItemID]
	}

	simNorm := minMaxNormalize(sims)
	popNorm := minMaxNormalize(pops)
	affNorm := minMaxNormalize(affs)

	candidates := make([]domain.RankedCandidate, len(pool))
	for i, c := range pool {
		candidates[i] = domain.RankedCandidate{
			ItemID:         c.ItemID,
			Similarity:     c.Similarity,
			SimilarityNorm: simNorm[i],
			Popularity:     pops[i],
			PopularityNorm: popNorm[i],
			Affinity:       affs[i],
			AffinityNorm:   affNorm[i],
			Score:          weights.Alpha*simNorm[i] + weights.Beta*popNorm[i] + weights.Gamma*affNorm[i],
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

func (s *Service) recordExposure(ctx context.Context, sessionID string, result domain.RankingResult) {
	if s.exposures == nil || sessionID == "" || len(result.Candidates) == 0 {
		return
	}

	itemIDs := make([]string, len(result.Candidates))
	for i, c := range result.Candidates {
		itemIDs[i] = c.ItemID
	}
	if err := s.exposures.RecordExposure(ctx, sessionID, result.VariantID, itemIDs...); err != nil {
		logger.Warn("failed to record ranking exposure", "session_id", sessionID, "error", err)
	}
}

func recentWindow() domain.TimeRange {
	start := time.Now().Add(-popularityWindow)
	return domain.TimeRange{Start: &start}
}
