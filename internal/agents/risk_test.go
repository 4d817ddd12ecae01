package agents

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// fakeChatClient implements llm.Client with a canned response
type fakeChatClient struct {
	content string
	err     error
	calls   int
}

func (f *fakeChatClient) Name() string  { return "fake" }
func (f *fakeChatClient) Model() string { return "fake-model" }

func (f *fakeChatClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.content}, nil
}

// newTestLabeler points a label client at a stub HTTP server
func newTestLabeler(t *testing.T, label string, confidence float64, status int) (*llm.LabelClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"label": "` + label + `", "confidence": ` + formatFloat(confidence) + `}`))
	}))

	client, err := llm.NewLabelClient(model.SLMConfig{
		Enabled: true,
		BaseURL: server.URL,
		APIKey:  "test-key",
	}, 5*time.Second)
	if err != nil {
		server.Close()
		t.Fatalf("create label client: %v", err)
	}
	return client, server
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func TestRiskScorer_SLMPrimary(t *testing.T) {
	labeler, server := newTestLabeler(t, "high", 0.92, http.StatusOK)
	defer server.Close()

	frontier := &fakeChatClient{content: `{"tier": "Low", "confidence": 0.9}`}
	scorer := NewRiskScorer(labeler, frontier, NewRegistry())

	assessment, detail := scorer.Score(context.Background(), "dangerous content", nil, model.DefaultThresholds())

	if assessment.Tier != model.RiskHigh {
		t.Errorf("expected High from the labeler, got %s", assessment.Tier)
	}
	if assessment.RouteReason != model.RouteSLMPrimary {
		t.Errorf("expected slm_primary route, got %q", assessment.RouteReason)
	}
	if frontier.calls != 0 {
		t.Errorf("frontier must not be called on a confident primary, got %d calls", frontier.calls)
	}
	if detail.FallbackUsed {
		t.Error("fallback flag must be false on the primary path")
	}
}

func TestRiskScorer_LowConfidenceFallsBack(t *testing.T) {
	labeler, server := newTestLabeler(t, "low", 0.40, http.StatusOK)
	defer server.Close()

	frontier := &fakeChatClient{content: `{"tier": "High", "reasoning": "r", "confidence": 0.85}`}
	scorer := NewRiskScorer(labeler, frontier, NewRegistry())

	assessment, detail := scorer.Score(context.Background(), "content", nil, model.DefaultThresholds())

	if assessment.Tier != model.RiskHigh {
		t.Errorf("expected the frontier verdict, got %s", assessment.Tier)
	}
	if assessment.RouteReason != model.RouteFallbackFrontier {
		t.Errorf("expected fallback_frontier route, got %q", assessment.RouteReason)
	}
	if !detail.FallbackUsed {
		t.Error("fallback flag must be set")
	}
	if frontier.calls != 1 {
		t.Errorf("expected 1 frontier call, got %d", frontier.calls)
	}
}

func TestRiskScorer_UnmappedLabelFallsBack(t *testing.T) {
	labeler, server := newTestLabeler(t, "spicy", 0.99, http.StatusOK)
	defer server.Close()

	frontier := &fakeChatClient{content: `{"tier": "Medium", "confidence": 0.8}`}
	scorer := NewRiskScorer(labeler, frontier, NewRegistry())

	assessment, _ := scorer.Score(context.Background(), "content", nil, model.DefaultThresholds())
	if assessment.Tier != model.RiskMedium {
		t.Errorf("expected frontier Medium after unmapped label, got %s", assessment.Tier)
	}
	if frontier.calls != 1 {
		t.Errorf("expected fallback call, got %d", frontier.calls)
	}
}

func TestRiskScorer_FrontierOnly(t *testing.T) {
	frontier := &fakeChatClient{content: `{"tier": "Low", "confidence": 0.9}`}
	scorer := NewRiskScorer(nil, frontier, NewRegistry())

	assessment, detail := scorer.Score(context.Background(), "content", nil, model.DefaultThresholds())

	if assessment.Tier != model.RiskLow {
		t.Errorf("expected Low, got %s", assessment.Tier)
	}
	if assessment.RouteReason != "frontier_only" {
		t.Errorf("expected frontier_only route, got %q", assessment.RouteReason)
	}
	if detail.FallbackUsed {
		t.Error("no fallback without a configured labeler")
	}
}

func TestRiskScorer_TotalFailureIsConservative(t *testing.T) {
	labeler, server := newTestLabeler(t, "low", 0.9, http.StatusInternalServerError)
	defer server.Close()

	frontier := &fakeChatClient{err: errors.New("model down")}
	scorer := NewRiskScorer(labeler, frontier, NewRegistry())

	assessment, detail := scorer.Score(context.Background(), "content", nil, model.DefaultThresholds())

	if assessment.Tier != model.RiskMedium {
		t.Errorf("expected conservative Medium, got %s", assessment.Tier)
	}
	if assessment.Confidence != 0.0 {
		t.Errorf("expected zero confidence, got %.2f", assessment.Confidence)
	}
	if detail.Status != model.StatusError {
		t.Errorf("expected error status, got %s", detail.Status)
	}
}
