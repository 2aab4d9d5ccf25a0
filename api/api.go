// Package api provides the HTTP server for uploading documents, querying the
// similarity index, and managing indexed records.
package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/deckmind/deckmind/pkg/index"
	"github.com/deckmind/deckmind/pkg/pipeline"
	"github.com/deckmind/deckmind/pkg/slides"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string
}

// Augmenter processes a whole document through the augmentation pipeline.
type Augmenter interface {
	AugmentDocument(ctx context.Context, doc slides.Document) pipeline.AugmentedDocument
}

// SearchIndex is the slice of the similarity index the server exposes.
type SearchIndex interface {
	Query(ctx context.Context, text string, topK int) ([]index.Hit, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ErrorResponse is the JSON body returned on request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the deckmind API server.
type Server struct {
	config    Config
	augmenter Augmenter
	index     SearchIndex
	logger    *slog.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The pipeline and index handles are
// injected so they can be shared with other entrypoints.
func NewServer(config Config, augmenter Augmenter, searchIndex SearchIndex, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		augmenter: augmenter,
		index:     searchIndex,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/documents", s.handleAugmentDocument)
	app.Get("/api/search/semantic", s.handleSemanticSearch)
	app.Delete("/api/documents/:id", s.handleDeleteDocument)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
