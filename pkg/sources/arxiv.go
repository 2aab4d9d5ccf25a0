package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultArxivBaseURL is the arXiv Atom export endpoint.
const DefaultArxivBaseURL = "https://export.arxiv.org/api/query"

// maxSummaryLen bounds each result's summary text.
const maxSummaryLen = 200

// ArxivProvider searches the arXiv preprint repository. The API returns an
// Atom feed, parsed here with encoding/xml.
type ArxivProvider struct {
	baseURL    string
	httpClient *http.Client
}

// ArxivConfig holds configuration for the arXiv provider.
type ArxivConfig struct {
	// BaseURL overrides the export endpoint. Defaults to
	// DefaultArxivBaseURL if empty.
	BaseURL string
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// NewArxivProvider creates an arXiv search provider.
func NewArxivProvider(cfg ArxivConfig) *ArxivProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultArxivBaseURL
	}
	return &ArxivProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name returns the provider identifier.
func (p *ArxivProvider) Name() SourceName { return SourceArxiv }

// Search queries the arXiv export API sorted by relevance.
func (p *ArxivProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultPerSourceLimit
	}

	reqURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		p.baseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arxiv feed: %w", err)
	}

	results := make([]Result, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		r := Result{
			Source:  SourceArxiv,
			Title:   strings.TrimSpace(entry.Title),
			Summary: boundSummary(strings.TrimSpace(entry.Summary)),
			URL:     strings.TrimSpace(entry.ID),
		}

		if len(entry.Authors) > 0 {
			authors := make([]string, 0, len(entry.Authors))
			for _, a := range entry.Authors {
				authors = append(authors, strings.TrimSpace(a.Name))
			}
			r.Extra = map[string]any{"authors": authors}
		}

		results = append(results, r)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// boundSummary truncates a summary to at most maxSummaryLen bytes without
// splitting a rune, marking the cut with an ellipsis.
func boundSummary(s string) string {
	if len(s) <= maxSummaryLen {
		return s
	}
	cut := maxSummaryLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// isRuneStart reports whether b can begin a UTF-8 encoded rune.
func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

var _ Provider = (*ArxivProvider)(nil)
