package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultScholarBaseURL is the Semantic Scholar paper-search endpoint.
const DefaultScholarBaseURL = "https://api.semanticscholar.org/graph/v1/paper/search"

const scholarFields = "title,abstract,url,year,authors,citationCount"

const scholarUserAgent = "deckmind/1.0"

// ScholarProvider searches the Semantic Scholar academic graph.
type ScholarProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ScholarConfig holds configuration for the Semantic Scholar provider.
type ScholarConfig struct {
	// BaseURL overrides the search endpoint. Defaults to
	// DefaultScholarBaseURL if empty.
	BaseURL string

	// APIKey is sent as x-api-key when set.
	APIKey string
}

// Semantic Scholar API JSON structures.
type scholarResponse struct {
	Data []scholarPaper `json:"data"`
}

type scholarPaper struct {
	Title         string          `json:"title"`
	Abstract      string          `json:"abstract"`
	URL           string          `json:"url"`
	Year          int             `json:"year"`
	CitationCount int             `json:"citationCount"`
	Authors       []scholarAuthor `json:"authors"`
}

type scholarAuthor struct {
	Name string `json:"name"`
}

// NewScholarProvider creates a Semantic Scholar search provider.
func NewScholarProvider(cfg ScholarConfig) *ScholarProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultScholarBaseURL
	}
	return &ScholarProvider{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name returns the provider identifier.
func (p *ScholarProvider) Name() SourceName { return SourceSemanticScholar }

// Search queries the paper-search endpoint.
func (p *ScholarProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultPerSourceLimit
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {scholarFields},
	}
	reqURL := p.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", scholarUserAgent)
	if p.apiKey != "" {
		req.Header.Set("x-api-key", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("semantic scholar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar returned HTTP %d", resp.StatusCode)
	}

	var sr scholarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing semantic scholar response: %w", err)
	}

	results := make([]Result, 0, len(sr.Data))
	for _, paper := range sr.Data {
		if len(results) >= limit {
			break
		}

		// First three authors only, matching the summary-card rendering.
		authors := make([]string, 0, 3)
		for i, a := range paper.Authors {
			if i == 3 {
				break
			}
			authors = append(authors, a.Name)
		}

		results = append(results, Result{
			Source:  SourceSemanticScholar,
			Title:   paper.Title,
			Summary: boundSummary(paper.Abstract),
			URL:     paper.URL,
			Extra: map[string]any{
				"authors":   authors,
				"year":      paper.Year,
				"citations": paper.CitationCount,
			},
		})
	}
	return results, nil
}

var _ Provider = (*ScholarProvider)(nil)
