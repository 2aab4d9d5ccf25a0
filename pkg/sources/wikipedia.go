package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultWikipediaBaseURL is the Wikipedia REST page-summary endpoint.
const DefaultWikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1/page/summary"

// WikipediaProvider looks up an encyclopedia summary for the query term.
// It yields at most one result.
type WikipediaProvider struct {
	baseURL    string
	httpClient *http.Client
}

// WikipediaConfig holds configuration for the Wikipedia provider.
type WikipediaConfig struct {
	// BaseURL overrides the summary endpoint. Defaults to
	// DefaultWikipediaBaseURL if empty.
	BaseURL string
}

type wikipediaSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// NewWikipediaProvider creates a Wikipedia summary provider.
func NewWikipediaProvider(cfg WikipediaConfig) *WikipediaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultWikipediaBaseURL
	}
	return &WikipediaProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name returns the provider identifier.
func (p *WikipediaProvider) Name() SourceName { return SourceWikipedia }

// Search looks up the page summary for the query term. A missing page is an
// empty result, not a failure.
func (p *WikipediaProvider) Search(ctx context.Context, query string, _ int) ([]Result, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned HTTP %d", resp.StatusCode)
	}

	var summary wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("parsing wikipedia response: %w", err)
	}

	return []Result{{
		Source:  SourceWikipedia,
		Title:   summary.Title,
		Summary: boundSummary(summary.Extract),
		URL:     summary.ContentURLs.Desktop.Page,
	}}, nil
}

var _ Provider = (*WikipediaProvider)(nil)
