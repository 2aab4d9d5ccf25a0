// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/deckmind/deckmind/pkg/vector"
)

const (
	// maxTitleLen bounds the stored slide title.
	maxTitleLen = 500

	// maxContentLen bounds the stored slide text.
	maxContentLen = 10000
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// Payload table. The vec0 virtual table only stores embeddings keyed by
	// integer rowid, so slide fields live here and share the rowid.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS slide_records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating records table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_slide_records_document ON slide_records(document_id)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating document index: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS slide_embeddings USING vec0(embedding float[%d])`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		"db_path", c.DBPath,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return &Driver{
		db:     db,
		logger: logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Insert stores one record and returns the assigned rowid as the record ID.
func (d *Driver) Insert(ctx context.Context, rec vector.Record) (string, error) {
	metaJSON := []byte("{}")
	if rec.Metadata != nil {
		b, err := json.Marshal(rec.Metadata)
		if err != nil {
			return "", fmt.Errorf("serializing metadata: %w", err)
		}
		metaJSON = b
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: beginning transaction: %v", vector.ErrConnection, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO slide_records(document_id, page_number, title, content, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.DocumentID, rec.PageNumber,
		truncate(rec.Title, maxTitleLen),
		truncate(rec.Content, maxContentLen),
		string(metaJSON),
	)
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("getting rowid: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO slide_embeddings(rowid, embedding) VALUES (?, ?)`,
		rowID, serializeFloat32(rec.Embedding),
	); err != nil {
		return "", fmt.Errorf("inserting embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("inserted record into sqlite-vec",
		"record_id", rowID,
		"document_id", rec.DocumentID,
		"page_number", rec.PageNumber,
	)

	return strconv.FormatInt(rowID, 10), nil
}

// Query finds the topK most similar records to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	// KNN query via vec0 MATCH, then JOIN back to recover the slide payload.
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			r.rowid,
			r.document_id,
			r.page_number,
			r.title,
			r.content,
			r.metadata,
			se.distance
		FROM slide_embeddings se
		INNER JOIN slide_records r ON r.rowid = se.rowid
		WHERE se.embedding MATCH ?
			AND se.k = ?
		ORDER BY se.distance
	`, serializeFloat32(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var (
			rowID    int64
			rec      vector.Record
			metaText string
			distance float64
		)
		if err := rows.Scan(&rowID, &rec.DocumentID, &rec.PageNumber, &rec.Title, &rec.Content, &metaText, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		rec.ID = strconv.FormatInt(rowID, 10)
		if metaText != "" {
			// Malformed metadata leaves the field nil rather than failing the query.
			_ = json.Unmarshal([]byte(metaText), &rec.Metadata)
		}

		results = append(results, vector.QueryResult{
			Record: rec,
			// Lower distance = higher similarity.
			Score: float32(1.0 / (1.0 + distance)),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec", "results", len(results))

	return results, nil
}

// DeleteByDocument removes all records belonging to the given document.
func (d *Driver) DeleteByDocument(ctx context.Context, documentID string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", vector.ErrConnection, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT rowid FROM slide_records WHERE document_id = ?`, documentID,
	)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	// vec0 has no filtered delete, so embeddings go one rowid at a time.
	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM slide_embeddings WHERE rowid = ?`, rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM slide_records WHERE document_id = ?`, documentID,
	); err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted document records from sqlite-vec",
		"document_id", documentID,
		"count", len(rowIDs),
	)

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*Driver)(nil)
