// Package sources queries external knowledge providers concurrently and
// merges their results. A provider failure is recorded as zero results from
// that provider and never surfaces as a pipeline-level error.
package sources

import "context"

// SourceName identifies one external knowledge provider.
type SourceName string

const (
	SourceWikipedia       SourceName = "wikipedia"
	SourceArxiv           SourceName = "arxiv"
	SourceSemanticScholar SourceName = "semantic_scholar"
)

// DefaultSources is the provider set used when a caller passes none.
var DefaultSources = []SourceName{SourceWikipedia, SourceArxiv, SourceSemanticScholar}

// Result is one item returned by an external provider.
type Result struct {
	Source         SourceName     `json:"source"`
	Title          string         `json:"title"`
	Summary        string         `json:"summary"`
	URL            string         `json:"url,omitempty"`
	RelevanceScore float64        `json:"relevance_score"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// Outcome is the structured per-source result of one provider query:
// either Ok (Results, possibly empty) or Failed (Reason set).
type Outcome struct {
	Source  SourceName `json:"source"`
	Results []Result   `json:"results,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

// Failed reports whether the provider query failed.
func (o Outcome) Failed() bool { return o.Reason != "" }

// AggregatedResult is the merged output of one SearchAll call.
type AggregatedResult struct {
	// BySource holds each requested provider's outcome, including failures.
	BySource map[SourceName]Outcome `json:"by_source"`

	// Merged is the combined pool: up to the per-source limit from each
	// provider, sorted descending by relevance score, capped at MergedCap.
	// Cross-source duplicates are not removed.
	Merged []Result `json:"merged"`
}

// Provider is one external knowledge source. Implementations must not panic
// on malformed upstream payloads; they return an error instead.
type Provider interface {
	// Name returns the provider identifier.
	Name() SourceName

	// Search runs one keyword query, returning at most limit results in the
	// provider's own ranking order.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
