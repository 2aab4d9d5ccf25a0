// Package vector provides interfaces and implementations for vector storage.
package vector

import "context"

// Record is a stored (content, metadata, embedding) triple. The backend
// assigns the ID on insert; callers hold only the returned ID afterwards.
type Record struct {
	// ID is the backend-assigned record identifier.
	ID string

	// DocumentID identifies the presentation the record came from.
	DocumentID string

	// PageNumber is the 1-based slide number within the document.
	PageNumber int

	// Title is the slide title, bounded at insert time.
	Title string

	// Content is the extracted slide text, bounded at insert time.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata carries arbitrary structured payload, serialized as JSON text
	// by the drivers.
	Metadata map[string]any
}

// QueryResult is a search hit with its similarity score.
type QueryResult struct {
	Record

	// Score is the similarity score. Drivers normalize backend distances so
	// that higher always means more similar (1/(1+distance) for L2 backends).
	Score float32
}

// Driver handles storage and retrieval of vector records.
type Driver interface {
	// Insert stores one record and returns the backend-assigned ID.
	Insert(ctx context.Context, rec Record) (string, error)

	// Query finds the topK most similar records to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// DeleteByDocument removes all records whose DocumentID matches.
	// Best-effort: not required to be atomic across records.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases any resources held by the driver.
	Close() error
}
