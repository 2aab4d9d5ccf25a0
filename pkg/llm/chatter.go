package llm

import "context"

// Chatter is the outbound generative-text boundary: one chat-style
// request/response call. Implementations live under pkg/llm/<provider>.
type Chatter interface {
	// Chat sends a completion request and returns the provider's response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}
