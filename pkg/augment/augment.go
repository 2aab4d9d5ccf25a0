// Package augment turns page content plus similarity context into
// model-generated extension material. Every operation resolves upstream
// failures locally: callers always receive a usable Result, degraded or not.
package augment

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/deckmind/deckmind/pkg/index"
	"github.com/deckmind/deckmind/pkg/llm"
)

// Sampling parameters per task. Open-ended extension runs hottest,
// fact checking coldest.
const (
	augmentTemperature  = 0.7
	questionTemperature = 0.5
	factTemperature     = 0.3

	augmentMaxTokens = 1500
)

// Apology text carried by a degraded result.
const (
	degradedContent = "Sorry, the knowledge extension service is temporarily unavailable."
	degradedSection = "Service temporarily unavailable"
)

// Result is the outcome of one augmentation call. Degraded is set only when
// the model call itself failed; unparseable-but-present output is wrapped as
// an unstructured result instead.
type Result struct {
	ExtendedContent string       `json:"extended_content"`
	Sections        []string     `json:"sections"`
	Structured      bool         `json:"structured"`
	ModelUsed       string       `json:"model_used"`
	TemplateType    TemplateType `json:"template_type"`
	Degraded        bool         `json:"degraded"`
	ErrorDetail     string       `json:"error_detail,omitempty"`
}

// structuredPayload is the shape the model is asked to produce in JSON mode.
type structuredPayload struct {
	ExtendedContent string   `json:"extended_content"`
	Sections        []string `json:"sections"`
}

// Client drives augmentation calls against a generative-text backend.
type Client struct {
	chatter llm.Chatter
	model   string
	logger  *slog.Logger
}

// Config holds configuration for the augmentation client.
type Config struct {
	// Model is the generative model name requested on every call.
	Model string
}

// NewClient creates an augmentation client over the given chat backend.
func NewClient(chatter llm.Chatter, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		chatter: chatter,
		model:   cfg.Model,
		logger:  logger,
	}
}

// Augment requests extension material for the given page content, feeding up
// to three similarity hits into the prompt as context. It never returns an
// error: a failed model call yields a degraded Result carrying the failure
// detail, and output that is not valid JSON is wrapped as unstructured text.
func (c *Client) Augment(ctx context.Context, content string, hits []index.Hit, templateType TemplateType) Result {
	resolved, template := templateFor(templateType)

	snippets := make([]string, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, hit.Text)
	}
	prompt := buildPrompt(template, content, snippets)

	maxTokens := augmentMaxTokens
	temperature := augmentTemperature
	resp, err := c.chatter.Chat(ctx, &llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			llm.NewTextMessage("system", systemPrompt),
			llm.NewTextMessage("user", prompt),
		},
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		JSONMode:    true,
	})
	if err != nil {
		c.logger.Warn("augmentation call failed",
			"model", c.model,
			"template", resolved,
			"error", err,
		)
		return Result{
			ExtendedContent: degradedContent,
			Sections:        []string{degradedSection},
			ModelUsed:       c.model,
			TemplateType:    resolved,
			Degraded:        true,
			ErrorDetail:     err.Error(),
		}
	}

	raw := resp.Message.Content

	var payload structuredPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil && payload.ExtendedContent != "" {
		return Result{
			ExtendedContent: payload.ExtendedContent,
			Sections:        payload.Sections,
			Structured:      true,
			ModelUsed:       c.model,
			TemplateType:    resolved,
		}
	}

	// Present-but-unparseable output is still usable text.
	return Result{
		ExtendedContent: raw,
		Sections:        []string{"Extended content"},
		ModelUsed:       c.model,
		TemplateType:    resolved,
	}
}
