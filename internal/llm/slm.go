package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// LabelResult is the SLM's classification verdict
type LabelResult struct {
	Label      string
	Confidence float64
}

// LabelClient is a thin client for a hosted small-labeler API. It is
// the primary path of the confidence-gated fallback used by the risk
// and policy agents.
type LabelClient struct {
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	labelerID        string
	labelerVersionID string
}

// NewLabelClient creates a label client from configuration
func NewLabelClient(cfg model.SLMConfig, timeout time.Duration) (*LabelClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SLM API key is required")
	}
	return &LabelClient{
		httpClient:       &http.Client{Timeout: timeout},
		baseURL:          cfg.BaseURL,
		apiKey:           strings.TrimSpace(cfg.APIKey),
		labelerID:        strings.TrimSpace(cfg.LabelerID),
		labelerVersionID: strings.TrimSpace(cfg.LabelerVersionID),
	}, nil
}

// Name returns the provider name
func (c *LabelClient) Name() string {
	return "slm"
}

// Model returns the labeler identifier
func (c *LabelClient) Model() string {
	if c.labelerID != "" {
		return c.labelerID
	}
	return "labeler"
}

type labelRequest struct {
	ContentText      string `json:"content_text"`
	CriteriaText     string `json:"criteria_text,omitempty"`
	LabelerID        string `json:"labeler_id,omitempty"`
	LabelerVersionID string `json:"labeler_version_id,omitempty"`
}

type labelResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Label classifies content against optional criteria text
func (c *LabelClient) Label(ctx context.Context, content, criteria string) (*LabelResult, error) {
	payload := labelRequest{
		ContentText:  content,
		CriteriaText: criteria,
	}
	if c.labelerID != "" && c.labelerVersionID != "" {
		payload.LabelerID = c.labelerID
		payload.LabelerVersionID = c.labelerVersionID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal label request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create label request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("label request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("label API status %d", resp.StatusCode)
	}

	var decoded labelResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode label response: %w", err)
	}
	if decoded.Label == "" {
		return nil, fmt.Errorf("label API returned empty label")
	}

	return &LabelResult{
		Label:      decoded.Label,
		Confidence: decoded.Confidence,
	}, nil
}
