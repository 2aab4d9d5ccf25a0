package sources

// Scorer assigns a relevance score in [0,1] to the result at the given
// position of a provider's list. It isolates ranking from the merge/cap
// logic so a query-aware ranker can replace it without touching the
// aggregator.
type Scorer interface {
	Score(source SourceName, position, total int) float64
}

// FixedScorer assigns each provider a constant score regardless of query or
// position. These constants mirror the relative trust placed in each source.
type FixedScorer struct{}

func (FixedScorer) Score(source SourceName, _, _ int) float64 {
	switch source {
	case SourceWikipedia:
		return 0.9
	case SourceSemanticScholar:
		return 0.85
	case SourceArxiv:
		return 0.8
	default:
		return 0.5
	}
}
