package catalog

import (
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

// CatalogRepository calls the external catalog service. It is only consulted
// on the last rung of the cold-start ladder, when even the popularity
// fallback has nothing to serve.
type CatalogRepository struct {
	cfg    Config
	client *http.Client
}

func NewCatalogRepository(cfg Config) *CatalogRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &CatalogRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type activeItemsResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

func (r *CatalogRepository) ActiveItemIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	url := r.cfg.BaseURL + "/api/products/active/ids"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog service unreachable: %w: %v", domain.ErrDependencyUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog service returned status %d: %w", res.StatusCode, domain.ErrDependencyUnavailable)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w: %v", domain.ErrDependencyUnavailable, err)
	}

	var parsed activeItemsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed catalog response: %w: %v", domain.ErrDependencyUnavailable, err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("catalog service reported failure: %w", domain.ErrDependencyUnavailable)
	}

	return parsed.Data, nil
}
