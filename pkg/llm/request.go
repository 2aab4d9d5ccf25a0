package llm

// ChatRequest represents a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model name (e.g., "gpt-4-turbo-preview", "llama3.2")
	Model string `json:"model"`

	// Conversation messages
	Messages []Message `json:"messages"`

	// Generation parameters (unified across providers)
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`

	// JSONMode asks the provider for machine-parseable structured output.
	// Providers are free to ignore it; callers must still parse defensively.
	JSONMode bool `json:"json_mode,omitempty"`
}
