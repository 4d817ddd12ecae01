package llm

import "context"

// Client defines the interface for chat-completion backed models
type Client interface {
	// Name returns the provider name
	Name() string

	// Model returns the configured model identifier
	Model() string

	// Chat sends a single system+user exchange and returns the reply
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is one chat exchange
type ChatRequest struct {
	// System is the system prompt (optional)
	System string

	// User is the user prompt
	User string

	// Temperature for generation; 0 means provider default
	Temperature float32

	// MaxTokens limits the response length; 0 means provider default
	MaxTokens int

	// JSONMode requests a JSON object response where supported
	JSONMode bool
}

// ChatResponse is the model's reply
type ChatResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Embedder produces vector embeddings for index queries
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
