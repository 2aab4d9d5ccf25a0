// Package pipeline orchestrates per-page knowledge augmentation: similarity
// index write and query, the augmentation call, and the external source
// fan-out, assembled into one AugmentedPage per slide.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/deckmind/deckmind/pkg/augment"
	"github.com/deckmind/deckmind/pkg/index"
	"github.com/deckmind/deckmind/pkg/slides"
	"github.com/deckmind/deckmind/pkg/sources"
)

const (
	// DefaultContextTopK is how many similarity hits feed the augmentation
	// prompt.
	DefaultContextTopK = 3

	// DefaultPageConcurrency bounds how many pages of one document are
	// augmented at once.
	DefaultPageConcurrency = 4

	// queryPrefixChars is how much page text stands in for a missing title
	// when querying external sources.
	queryPrefixChars = 50
)

// SimilarityIndex is the slice of the index the pipeline drives.
type SimilarityIndex interface {
	Write(ctx context.Context, text string, meta index.Metadata) (string, error)
	Query(ctx context.Context, text string, topK int) ([]index.Hit, error)
}

// Augmenter produces extension material for page content.
type Augmenter interface {
	Augment(ctx context.Context, content string, hits []index.Hit, templateType augment.TemplateType) augment.Result
}

// Searcher fans a query out to external knowledge sources.
type Searcher interface {
	SearchAll(ctx context.Context, query string, sourceNames []sources.SourceName, perSourceLimit int) sources.AggregatedResult
}

// AugmentedPage is a page plus everything the pipeline attached to it. The
// pointer fields stay nil for pages that were skipped (no extracted text).
type AugmentedPage struct {
	slides.Page

	Augmentation       *augment.Result           `json:"augmentation,omitempty"`
	ExternalReferences *sources.AggregatedResult `json:"external_references,omitempty"`
	IndexRecordID      string                    `json:"index_record_id,omitempty"`
}

// AugmentedDocument is a fully processed presentation, pages in input order.
type AugmentedDocument struct {
	DocumentID string          `json:"document_id"`
	Filename   string          `json:"filename"`
	Pages      []AugmentedPage `json:"pages"`
}

// Pipeline holds the service handles used to augment pages. Construct it once
// at process start and share it; it keeps no per-call state.
type Pipeline struct {
	index      SimilarityIndex
	augmenter  Augmenter
	searcher   Searcher
	topK       int
	template   augment.TemplateType
	pageLimit  int
	logger     *slog.Logger
}

// Config holds configuration for the pipeline.
type Config struct {
	// ContextTopK is how many similarity hits to query for the prompt.
	// Defaults to DefaultContextTopK if zero.
	ContextTopK int

	// TemplateType selects the augmentation prompt template.
	// Defaults to augment.TemplateDefault if empty.
	TemplateType augment.TemplateType

	// PageConcurrency bounds concurrent page tasks per document.
	// Defaults to DefaultPageConcurrency if zero.
	PageConcurrency int
}

// New creates a pipeline over the given service handles.
func New(idx SimilarityIndex, augmenter Augmenter, searcher Searcher, cfg Config, logger *slog.Logger) *Pipeline {
	topK := cfg.ContextTopK
	if topK <= 0 {
		topK = DefaultContextTopK
	}

	template := cfg.TemplateType
	if template == "" {
		template = augment.TemplateDefault
	}

	pageLimit := cfg.PageConcurrency
	if pageLimit <= 0 {
		pageLimit = DefaultPageConcurrency
	}

	return &Pipeline{
		index:     idx,
		augmenter: augmenter,
		searcher:  searcher,
		topK:      topK,
		template:  template,
		pageLimit: pageLimit,
		logger:    logger,
	}
}

// AugmentPage augments one page. A page with no extracted text is returned
// unaugmented; index failures only impoverish the prompt context. The
// augmentation call and the external source fan-out run concurrently once the
// similarity context is in hand. AugmentPage never fails.
func (p *Pipeline) AugmentPage(ctx context.Context, page slides.Page, documentID string) AugmentedPage {
	text := strings.TrimSpace(page.Text)
	if text == "" {
		return AugmentedPage{Page: page}
	}

	recordID, err := p.index.Write(ctx, text, index.Metadata{
		DocumentID: documentID,
		PageNumber: page.PageNumber,
		Title:      page.Title,
	})
	if err != nil {
		p.logger.Warn("index write failed, continuing without record",
			"document_id", documentID,
			"page_number", page.PageNumber,
			"error", err,
		)
	}

	hits, err := p.index.Query(ctx, text, p.topK)
	if err != nil {
		p.logger.Warn("similarity query failed, continuing without context",
			"document_id", documentID,
			"page_number", page.PageNumber,
			"error", err,
		)
		hits = nil
	}

	query := page.Title
	if query == "" {
		query = truncateRunes(text, queryPrefixChars)
	}

	var (
		wg         sync.WaitGroup
		augmented  augment.Result
		references sources.AggregatedResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		augmented = p.augmenter.Augment(ctx, text, hits, p.template)
	}()
	go func() {
		defer wg.Done()
		references = p.searcher.SearchAll(ctx, query, nil, sources.DefaultPerSourceLimit)
	}()
	wg.Wait()

	return AugmentedPage{
		Page:               page,
		Augmentation:       &augmented,
		ExternalReferences: &references,
		IndexRecordID:      recordID,
	}
}

// AugmentDocument augments every page of a document concurrently, bounded by
// the configured page concurrency, and returns the pages in input order. One
// page's outcome never affects its siblings.
func (p *Pipeline) AugmentDocument(ctx context.Context, doc slides.Document) AugmentedDocument {
	augmented := make([]AugmentedPage, len(doc.Pages))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.pageLimit)
	for i, page := range doc.Pages {
		wg.Add(1)
		go func(i int, page slides.Page) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			augmented[i] = p.AugmentPage(ctx, page, doc.DocumentID)
		}(i, page)
	}
	wg.Wait()

	p.logger.Info("document augmented",
		"document_id", doc.DocumentID,
		"pages", len(doc.Pages),
	)

	return AugmentedDocument{
		DocumentID: doc.DocumentID,
		Filename:   doc.Filename,
		Pages:      augmented,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
