package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements Client against Groq's OpenAI-compatible API.
// Used as a cheap fast path before the frontier model.
type GroqClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	tokens  int
}

// NewGroqClient creates a Groq client
func NewGroqClient(cfg model.LLMConfig) (*GroqClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = groqBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &GroqClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.FastTimeout(),
		tokens:  cfg.MaxTokens,
	}, nil
}

// Name returns the provider name
func (c *GroqClient) Name() string {
	return "groq"
}

// Model returns the configured model identifier
func (c *GroqClient) Model() string {
	return c.model
}

// Chat sends a chat completion request on the fast timeout budget
func (c *GroqClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
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

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("groq API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from groq")
	}

	return &ChatResponse{
		Content:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
