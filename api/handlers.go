package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deckmind/deckmind/pkg/index"
	"github.com/deckmind/deckmind/pkg/slides"
)

const defaultSearchTopK = 5

// AugmentDocumentRequest is the POST /api/documents body: one extracted
// presentation, pages in order. DocumentID is assigned when absent.
type AugmentDocumentRequest struct {
	DocumentID string        `json:"document_id,omitempty"`
	Filename   string        `json:"filename"`
	Pages      []slides.Page `json:"pages"`
}

// SemanticSearchResponse is the GET /api/search/semantic body.
type SemanticSearchResponse struct {
	Query   string      `json:"query"`
	Results []index.Hit `json:"results"`
}

// DeleteDocumentResponse is the DELETE /api/documents/:id body.
type DeleteDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Deleted    bool   `json:"deleted"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAugmentDocument handles POST /api/documents requests: it runs every
// page of the posted document through the augmentation pipeline and returns
// the augmented document.
func (s *Server) handleAugmentDocument(c *fiber.Ctx) error {
	var req AugmentDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Pages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document has no pages"})
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	doc := slides.Document{
		DocumentID: documentID,
		Filename:   req.Filename,
		Pages:      req.Pages,
	}

	s.logger.Info("augmenting document",
		"document_id", documentID,
		"filename", req.Filename,
		"pages", len(req.Pages),
	)

	return c.JSON(s.augmenter.AugmentDocument(c.Context(), doc))
}

// handleSemanticSearch handles GET /api/search/semantic requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 5): number of results to return
func (s *Server) handleSemanticSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := defaultSearchTopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	hits, err := s.index.Query(c.Context(), query, topK)
	if err != nil {
		if errors.Is(err, index.ErrInvalidArgument) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
	}

	if hits == nil {
		hits = []index.Hit{}
	}
	return c.JSON(SemanticSearchResponse{Query: query, Results: hits})
}

// handleDeleteDocument handles DELETE /api/documents/:id requests, removing
// every indexed record for the document.
func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	documentID := c.Params("id")
	if documentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	if err := s.index.DeleteByDocument(c.Context(), documentID); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(DeleteDocumentResponse{DocumentID: documentID, Deleted: true})
}
