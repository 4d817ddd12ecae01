package llm

import (
	"fmt"
	"strings"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// NewClient creates a chat client based on configuration.
// Configuration errors (missing keys) surface here, before the
// pipeline runs.
func NewClient(cfg model.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "azure", "":
		return NewOpenAIClient(cfg)

	case "groq":
		return NewGroqClient(cfg)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, azure, groq)", cfg.Provider)
	}
}
