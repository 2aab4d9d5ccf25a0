// Package index provides the similarity index over previously seen slide
// content. It owns the use of embeddings (indexing, querying, result shaping)
// on top of a vector.Driver backend.
//
// The index is a side channel feeding the augmentation prompt: callers must
// treat ErrIndexUnavailable as "no similar content available", never as a
// fatal pipeline error.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deckmind/deckmind/pkg/embeddings"
	"github.com/deckmind/deckmind/pkg/vector"
)

var (
	// ErrIndexUnavailable is returned when the embedding service or the
	// vector backend cannot be reached. The call is not retried internally;
	// retry policy belongs to the caller.
	ErrIndexUnavailable = errors.New("similarity index unavailable")

	// ErrInvalidArgument is returned for caller mistakes such as a
	// non-positive topK. It is not a degradation path.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Metadata identifies where an indexed text came from.
type Metadata struct {
	DocumentID string `json:"document_id"`
	PageNumber int    `json:"page_number"`
	Title      string `json:"title,omitempty"`
}

// Hit is one similarity query result. Score is normalized by the vector
// drivers so that higher always means more similar.
type Hit struct {
	RecordID   string         `json:"record_id"`
	Score      float32        `json:"score"`
	Text       string         `json:"text"`
	Title      string         `json:"title,omitempty"`
	PageNumber int            `json:"page_number"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Index stores (text, metadata, vector) records and answers nearest-neighbor
// queries. Records are immutable once written; the only delete path is the
// bulk per-document one.
type Index struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *slog.Logger
}

// New creates an Index over the given embedder and vector driver.
func New(embedder embeddings.Embedder, driver vector.Driver, logger *slog.Logger) *Index {
	return &Index{
		embedder: embedder,
		driver:   driver,
		logger:   logger,
	}
}

// Write embeds text and durably persists one record, returning the
// backend-assigned record ID.
func (ix *Index) Write(ctx context.Context, text string, meta Metadata) (string, error) {
	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: embedding text: %v", ErrIndexUnavailable, err)
	}

	recordID, err := ix.driver.Insert(ctx, vector.Record{
		DocumentID: meta.DocumentID,
		PageNumber: meta.PageNumber,
		Title:      meta.Title,
		Content:    text,
		Embedding:  embedding,
		Metadata: map[string]any{
			"document_id": meta.DocumentID,
			"page_number": meta.PageNumber,
			"title":       meta.Title,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: inserting record: %v", ErrIndexUnavailable, err)
	}

	ix.logger.Debug("indexed page text",
		"record_id", recordID,
		"document_id", meta.DocumentID,
		"page_number", meta.PageNumber,
	)

	return recordID, nil
}

// Query returns up to topK records most similar to text, most similar first.
// Query never mutates the index.
func (ix *Index) Query(ctx context.Context, text string, topK int) ([]Hit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be >= 1, got %d", ErrInvalidArgument, topK)
	}

	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrIndexUnavailable, err)
	}

	results, err := ix.driver.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: querying backend: %v", ErrIndexUnavailable, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			RecordID:   r.ID,
			Score:      r.Score,
			Text:       r.Content,
			Title:      r.Title,
			PageNumber: r.PageNumber,
			Metadata:   r.Metadata,
		})
	}

	ix.logger.Debug("similarity query", "top_k", topK, "hits", len(hits))

	return hits, nil
}

// DeleteByDocument removes all records for the given document. Best-effort:
// the backend is not required to delete atomically across records.
func (ix *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ix.driver.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: deleting document records: %v", ErrIndexUnavailable, err)
	}
	return nil
}
