package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// OpenAIClient implements Client for OpenAI-compatible endpoints,
// including Azure OpenAI deployments
type OpenAIClient struct {
	client  *openai.Client
	name    string
	model   string
	timeout time.Duration
	tokens  int
}

// NewOpenAIClient creates a client for the configured endpoint
func NewOpenAIClient(cfg model.LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	var clientConfig openai.ClientConfig
	name := "openai"
	switch {
	case cfg.AzureEndpoint != "":
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, normalizeAzureEndpoint(cfg.AzureEndpoint))
		name = "azure"
	case cfg.BaseURL != "":
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = cfg.BaseURL
	default:
		clientConfig = openai.DefaultConfig(cfg.APIKey)
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		name:    name,
		model:   cfg.Model,
		timeout: cfg.Timeout(),
		tokens:  cfg.MaxTokens,
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return c.name
}

// Model returns the configured model identifier
func (c *OpenAIClient) Model() string {
	return c.model
}

// Chat sends a chat completion request
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.tokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", c.name)
	}

	return &ChatResponse{
		Content:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// normalizeAzureEndpoint strips Foundry project suffixes so the same
// endpoint value works for both resource and project URLs
func normalizeAzureEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if idx := strings.Index(endpoint, "/api/projects/"); idx > 0 {
		endpoint = endpoint[:idx]
	}
	return strings.TrimSuffix(endpoint, "/")
}
