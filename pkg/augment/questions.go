package augment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deckmind/deckmind/pkg/llm"
)

const maxQuestionContentChars = 500

// Question is one generated comprehension question. Error is set on the
// single marker record returned when generation fails.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Error       string   `json:"error,omitempty"`
}

type questionPayload struct {
	Questions []Question `json:"questions"`
}

const questionPrompt = `Generate 3 %s questions based on the following content:

Content: %s

Requirements:
1. Questions cover the core knowledge points
2. Include the correct answer with a detailed explanation
3. Distractor options are plausible but only one option is correct

Return JSON in this form: {"questions": [{"question": "...", "options": ["...", ...], "answer": "...", "explanation": "..."}]}`

// GenerateQuestions produces comprehension questions for the given content.
// Like Augment it never returns an error: any call or parse failure yields a
// single marker record carrying the failure detail.
func (c *Client) GenerateQuestions(ctx context.Context, content, questionType string) []Question {
	prompt := fmt.Sprintf(questionPrompt, questionType, truncateRunes(content, maxQuestionContentChars))

	temperature := questionTemperature
	resp, err := c.chatter.Chat(ctx, &llm.ChatRequest{
		Model:       c.model,
		Messages:    []llm.Message{llm.NewTextMessage("user", prompt)},
		Temperature: &temperature,
		JSONMode:    true,
	})
	if err != nil {
		c.logger.Warn("question generation failed", "model", c.model, "error", err)
		return []Question{{Error: err.Error()}}
	}

	var payload questionPayload
	if err := json.Unmarshal([]byte(resp.Message.Content), &payload); err != nil {
		c.logger.Warn("question payload unparseable", "model", c.model, "error", err)
		return []Question{{Error: err.Error()}}
	}
	return payload.Questions
}
