package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// EmbeddingClient produces vector embeddings via an OpenAI-compatible
// embeddings endpoint. Implements Embedder.
type EmbeddingClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewEmbeddingClient creates an embedding client
func NewEmbeddingClient(cfg model.LLMConfig) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	var clientConfig openai.ClientConfig
	if cfg.AzureEndpoint != "" {
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, normalizeAzureEndpoint(cfg.AzureEndpoint))
	} else {
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
	}

	return &EmbeddingClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.EmbeddingModel,
		timeout: cfg.Timeout(),
	}, nil
}

// Embed returns the embedding vector for the given text
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
