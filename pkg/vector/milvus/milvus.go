// Package milvus provides a Milvus vector database driver using its HTTP API v2.
package milvus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/deckmind/deckmind/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for slide embeddings.
	DefaultCollectionName = "slide_pages"

	// maxTitleLen bounds the stored slide title.
	maxTitleLen = 500

	// maxContentLen bounds the stored slide text.
	maxContentLen = 10000
)

// Driver implements vector.Driver against Milvus's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Milvus driver.
type Config struct {
	// URL is the Milvus server URL (e.g., "http://localhost:19530").
	URL string

	// CollectionName is the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding dimensionality used when the collection
	// has to be created.
	Dimensions uint
}

// NewDriver creates a new Milvus vector driver and ensures the collection
// exists.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("milvus URL is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("milvus embedding dimensions cannot be 0, must be configured")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	d := &Driver{
		baseURL:        c.URL,
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	if err := d.ensureCollection(context.Background(), c.Dimensions); err != nil {
		return nil, fmt.Errorf("ensuring collection %q: %w", collectionName, err)
	}

	logger.Info("connected to Milvus",
		"url", c.URL,
		"collection", collectionName,
	)

	return d, nil
}

// post sends a JSON request to a /v2/vectordb endpoint and decodes the reply
// into out (when out is non-nil).
func (d *Driver) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := d.baseURL + "/v2/vectordb" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("milvus returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ensureCollection describes the collection and creates it when missing.
// Milvus's quick-create path auto-generates an int64 primary key and enables
// dynamic fields, which is all the slide schema needs.
func (d *Driver) ensureCollection(ctx context.Context, dimensions uint) error {
	var describe baseResponse
	err := d.post(ctx, "/collections/describe", describeCollectionRequest{
		CollectionName: d.collectionName,
	}, &describe)
	if err == nil && describe.Code == 0 {
		return nil
	}

	var create baseResponse
	if err := d.post(ctx, "/collections/create", createCollectionRequest{
		CollectionName: d.collectionName,
		Dimension:      dimensions,
		MetricType:     "L2",
	}, &create); err != nil {
		return err
	}
	if create.Code != 0 {
		return fmt.Errorf("creating collection: milvus code %d: %s", create.Code, create.Msg)
	}
	return nil
}

// Insert stores one record and returns the Milvus-assigned numeric ID.
func (d *Driver) Insert(ctx context.Context, rec vector.Record) (string, error) {
	metaJSON := "{}"
	if rec.Metadata != nil {
		b, err := json.Marshal(rec.Metadata)
		if err != nil {
			return "", fmt.Errorf("serializing metadata: %w", err)
		}
		metaJSON = string(b)
	}

	row := map[string]any{
		"document_id": rec.DocumentID,
		"page_number": rec.PageNumber,
		"title":       truncate(rec.Title, maxTitleLen),
		"content":     truncate(rec.Content, maxContentLen),
		"vector":      rec.Embedding,
		"metadata":    metaJSON,
	}

	var resp insertResponse
	if err := d.post(ctx, "/entities/insert", insertRequest{
		CollectionName: d.collectionName,
		Data:           []map[string]any{row},
	}, &resp); err != nil {
		return "", err
	}
	if resp.Code != 0 {
		return "", fmt.Errorf("inserting record: milvus code %d: %s", resp.Code, resp.Msg)
	}
	if len(resp.Data.InsertIDs) == 0 {
		return "", fmt.Errorf("inserting record: no ID returned")
	}

	id := anyToID(resp.Data.InsertIDs[0])

	d.logger.Debug("inserted record into milvus",
		"record_id", id,
		"document_id", rec.DocumentID,
		"page_number", rec.PageNumber,
	)

	return id, nil
}

// Query finds the topK most similar records to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var resp searchResponse
	if err := d.post(ctx, "/entities/search", searchRequest{
		CollectionName: d.collectionName,
		Data:           [][]float32{embedding},
		Limit:          topK,
		OutputFields:   []string{"document_id", "page_number", "title", "content", "metadata"},
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("querying: milvus code %d: %s", resp.Code, resp.Msg)
	}

	results := make([]vector.QueryResult, 0, len(resp.Data))
	for _, row := range resp.Data {
		rec := vector.Record{
			ID:         anyToID(row["id"]),
			DocumentID: stringField(row, "document_id"),
			Title:      stringField(row, "title"),
			Content:    stringField(row, "content"),
		}
		if n, ok := row["page_number"].(float64); ok {
			rec.PageNumber = int(n)
		}
		if metaText := stringField(row, "metadata"); metaText != "" {
			// Malformed metadata leaves the field nil rather than failing the query.
			_ = json.Unmarshal([]byte(metaText), &rec.Metadata)
		}

		var score float32
		if dist, ok := row["distance"].(float64); ok {
			// Milvus reports L2 distance; lower distance = higher similarity.
			score = float32(1.0 / (1.0 + dist))
		}

		results = append(results, vector.QueryResult{Record: rec, Score: score})
	}

	d.logger.Debug("queried milvus", "results", len(results))

	return results, nil
}

// DeleteByDocument removes all records belonging to the given document via a
// filtered delete.
func (d *Driver) DeleteByDocument(ctx context.Context, documentID string) error {
	var resp baseResponse
	if err := d.post(ctx, "/entities/delete", deleteRequest{
		CollectionName: d.collectionName,
		Filter:         fmt.Sprintf("document_id == %q", documentID),
	}, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return fmt.Errorf("deleting records: milvus code %d: %s", resp.Code, resp.Msg)
	}

	d.logger.Debug("deleted document records from milvus", "document_id", documentID)

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// anyToID renders a Milvus primary key (int64 or string) as a string.
func anyToID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

func stringField(row map[string]any, key string) string {
	if s, ok := row[key].(string); ok {
		return s
	}
	return ""
}

var _ vector.Driver = (*Driver)(nil)
