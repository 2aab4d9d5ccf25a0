package augment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckmind/deckmind/pkg/llm"
)

// Accuracy grades a checked statement.
type Accuracy string

const (
	AccuracyCorrect          Accuracy = "correct"
	AccuracyPartiallyCorrect Accuracy = "partially_correct"
	AccuracyIncorrect        Accuracy = "incorrect"
	AccuracyUnverifiable     Accuracy = "unverifiable"
)

// Confidence grades how sure the model is about a verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FactCheck is the verdict on one statement.
type FactCheck struct {
	Statement  string     `json:"statement"`
	Accuracy   Accuracy   `json:"accuracy"`
	Confidence Confidence `json:"confidence"`
	Evidence   string     `json:"evidence"`
}

type factCheckPayload struct {
	Checks []FactCheck `json:"checks"`
}

const factPrompt = `Please verify the factual accuracy of the following statements:

Statements:
%s

For each statement, judge:
1. Accuracy (correct / partially_correct / incorrect / unverifiable)
2. Confidence (high / medium / low)
3. Brief supporting or refuting evidence

Return JSON in this form: {"checks": [{"statement": "...", "accuracy": "...", "confidence": "...", "evidence": "..."}]}`

// CheckFacts asks the model to verify a batch of statements. Unlike Augment
// and GenerateQuestions, a call or parse failure propagates to the caller:
// fact verdicts have no meaningful degraded form, so the caller decides the
// fallback.
func (c *Client) CheckFacts(ctx context.Context, statements []string) ([]FactCheck, error) {
	var sb strings.Builder
	for i, s := range statements {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	prompt := fmt.Sprintf(factPrompt, strings.TrimRight(sb.String(), "\n"))

	temperature := factTemperature
	resp, err := c.chatter.Chat(ctx, &llm.ChatRequest{
		Model:       c.model,
		Messages:    []llm.Message{llm.NewTextMessage("user", prompt)},
		Temperature: &temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("fact check call: %w", err)
	}

	var payload factCheckPayload
	if err := json.Unmarshal([]byte(resp.Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("parsing fact check response: %w", err)
	}
	return payload.Checks, nil
}
