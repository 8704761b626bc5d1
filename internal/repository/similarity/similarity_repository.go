package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fashionPulse/domain"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// SimilarityRepository calls the external visual-similarity service. Every
// failure, including non-2xx responses and malformed bodies, surfaces as
// domain.ErrDependencyUnavailable so the handler maps it to a gateway error
// rather than a server bug.
type SimilarityRepository struct {
	cfg    Config
	client *http.Client
}

func NewSimilarityRepository(cfg Config) *SimilarityRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &SimilarityRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchRequest struct {
	SeedItems []string `json:"seed_items"`
	Limit     int      `json:"limit"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		ItemID     string  `json:"item_id"`
		Similarity float64 `json:"similarity"`
	} `json:"data"`
}

func (r *SimilarityRepository) SimilarCandidates(ctx context.Context, seedItems []string, limit int) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	payload, err := json.Marshal(searchRequest{SeedItems: seedItems, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal similarity request: %w", err)
	}

	url := r.cfg.BaseURL + "/similarity/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("similarity service unreachable: %w: %v", domain.ErrDependencyUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("similarity service returned status %d: %w", res.StatusCode, domain.ErrDependencyUnavailable)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read similarity response: %w: %v", domain.ErrDependencyUnavailable, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed similarity response: %w: %v", domain.ErrDependencyUnavailable, err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("similarity service reported failure: %w", domain.ErrDependencyUnavailable)
	}

	candidates := make([]domain.Candidate, len(parsed.Data))
	for i, d := range parsed.Data {
		candidates[i] = domain.Candidate{ItemID: d.ItemID, Similarity: d.Similarity}
	}

	return candidates, nil
}
