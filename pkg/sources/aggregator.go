package sources

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultPerSourceLimit is how many results each provider contributes to
	// the merged pool when the caller does not say otherwise.
	DefaultPerSourceLimit = 3

	// MergedCap bounds the merged result list.
	MergedCap = 10

	// DefaultPerSourceTimeout bounds each provider query. The aggregator's
	// completion time is the max over source latencies, not the sum.
	DefaultPerSourceTimeout = 10 * time.Second
)

// Aggregator fans one query out to its registered providers.
type Aggregator struct {
	providers map[SourceName]Provider
	order     []SourceName
	scorer    Scorer
	timeout   time.Duration
	logger    *slog.Logger
}

// Config holds configuration for the aggregator.
type Config struct {
	// PerSourceTimeout bounds each provider query.
	// Defaults to DefaultPerSourceTimeout if zero.
	PerSourceTimeout time.Duration

	// Scorer assigns relevance scores. Defaults to FixedScorer.
	Scorer Scorer
}

// NewAggregator creates an aggregator over the given providers. Provider
// registration order fixes the tie-break order of the merged list.
func NewAggregator(providers []Provider, cfg Config, logger *slog.Logger) *Aggregator {
	timeout := cfg.PerSourceTimeout
	if timeout == 0 {
		timeout = DefaultPerSourceTimeout
	}

	scorer := cfg.Scorer
	if scorer == nil {
		scorer = FixedScorer{}
	}

	a := &Aggregator{
		providers: make(map[SourceName]Provider, len(providers)),
		scorer:    scorer,
		timeout:   timeout,
		logger:    logger,
	}
	for _, p := range providers {
		if _, dup := a.providers[p.Name()]; dup {
			continue
		}
		a.providers[p.Name()] = p
		a.order = append(a.order, p.Name())
	}
	return a
}

// SearchAll queries the requested sources concurrently and merges their
// results. A timeout or error in one source produces an empty outcome for
// that source only; when every provider fails the returned AggregatedResult
// is valid and empty. SearchAll itself never fails.
//
// The query string is forwarded to providers as-is, empty included; a
// provider rejecting it is that provider's failure case.
func (a *Aggregator) SearchAll(ctx context.Context, query string, sourceNames []SourceName, perSourceLimit int) AggregatedResult {
	if perSourceLimit <= 0 {
		perSourceLimit = DefaultPerSourceLimit
	}

	requested := a.requested(sourceNames)

	outcomes := make(map[SourceName]Outcome, len(requested))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, name := range requested {
		provider := a.providers[name]
		wg.Add(1)
		go func(name SourceName, provider Provider) {
			defer wg.Done()

			queryCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			results, err := provider.Search(queryCtx, query, perSourceLimit)

			outcome := Outcome{Source: name}
			if err != nil {
				outcome.Reason = err.Error()
				a.logger.Warn("source query failed",
					"source", name,
					"error", err,
				)
			} else {
				outcome.Results = a.scored(name, results)
			}

			mu.Lock()
			outcomes[name] = outcome
			mu.Unlock()
		}(name, provider)
	}
	wg.Wait()

	// Build the pool in requested-source order so ties in the stable sort
	// resolve deterministically regardless of goroutine completion order.
	var pool []Result
	for _, name := range requested {
		outcome := outcomes[name]
		contrib := outcome.Results
		if len(contrib) > perSourceLimit {
			contrib = contrib[:perSourceLimit]
		}
		pool = append(pool, contrib...)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].RelevanceScore > pool[j].RelevanceScore
	})
	if len(pool) > MergedCap {
		pool = pool[:MergedCap]
	}

	a.logger.Debug("aggregated external sources",
		"query", query,
		"sources", len(requested),
		"merged", len(pool),
	)

	return AggregatedResult{
		BySource: outcomes,
		Merged:   pool,
	}
}

// requested resolves the caller's source set against registered providers,
// preserving registration order. Nil or empty means all registered sources.
func (a *Aggregator) requested(sourceNames []SourceName) []SourceName {
	if len(sourceNames) == 0 {
		return a.order
	}

	want := make(map[SourceName]bool, len(sourceNames))
	for _, name := range sourceNames {
		want[name] = true
	}

	var requested []SourceName
	for _, name := range a.order {
		if want[name] {
			requested = append(requested, name)
		}
	}
	return requested
}

// scored applies the aggregator's Scorer to a provider's results.
func (a *Aggregator) scored(name SourceName, results []Result) []Result {
	for i := range results {
		results[i].RelevanceScore = a.scorer.Score(name, i, len(results))
	}
	return results
}
