package governance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "decisions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func allowResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Decision:       model.Decision{Action: model.ActionAllow, Confidence: 0.9},
		RiskAssessment: model.RiskAssessment{Tier: model.RiskLow, Confidence: 0.9},
	}
}

func escalatedResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Decision: model.Decision{
			Action:              model.ActionEscalateHuman,
			Confidence:          0.4,
			RequiresHumanReview: true,
			EscalationReason:    "low policy confidence",
		},
		RiskAssessment: model.RiskAssessment{Tier: model.RiskHigh, Confidence: 0.8},
		AgentExecutions: []model.AgentExecutionDetail{
			{AgentName: "Risk Agent", FallbackUsed: true, Status: model.StatusCompleted},
		},
	}
}

func TestStore_SaveDecision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveDecision(ctx, "harmless post", allowResult())
	if err != nil {
		t.Fatalf("save decision: %v", err)
	}
	if id == "" {
		t.Error("expected a record ID")
	}
}

func TestStore_ReviewLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateReview(ctx, "risky post", escalatedResult())
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	pending, err := store.ListReviews(ctx, model.ReviewPending, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending review, got %d", len(pending))
	}
	if pending[0].ID != id {
		t.Errorf("expected review %s, got %s", id, pending[0].ID)
	}
	if pending[0].Result == nil || pending[0].Result.Decision.Action != model.ActionEscalateHuman {
		t.Error("expected the stored result bundle round-tripped")
	}

	if err := store.SubmitReview(ctx, id, model.ActionAllow, "context makes it satire"); err != nil {
		t.Fatalf("submit review: %v", err)
	}

	pending, err = store.ListReviews(ctx, model.ReviewPending, 10)
	if err != nil {
		t.Fatalf("list pending after decide: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending reviews, got %d", len(pending))
	}

	reviewed, err := store.ListReviews(ctx, model.ReviewReviewed, 10)
	if err != nil {
		t.Fatalf("list reviewed: %v", err)
	}
	if len(reviewed) != 1 {
		t.Fatalf("expected 1 reviewed request, got %d", len(reviewed))
	}
	r := reviewed[0]
	if r.HumanAction != model.ActionAllow {
		t.Errorf("expected human action Allow, got %s", r.HumanAction)
	}
	if r.HumanRationale != "context makes it satire" {
		t.Errorf("unexpected rationale: %q", r.HumanRationale)
	}
	if r.ReviewedAt == nil {
		t.Error("expected reviewed_at timestamp")
	}
}

func TestStore_SubmitReviewTwiceFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateReview(ctx, "post", escalatedResult())
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if err := store.SubmitReview(ctx, id, model.ActionAllow, ""); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := store.SubmitReview(ctx, id, model.ActionEscalateHuman, ""); !errors.Is(err, ErrNoPendingReview) {
		t.Errorf("second submit on the same review must report no pending review, got %v", err)
	}
}

func TestStore_SubmitUnknownReviewFails(t *testing.T) {
	store := newTestStore(t)
	err := store.SubmitReview(context.Background(), "no-such-id", model.ActionAllow, "")
	if !errors.Is(err, ErrNoPendingReview) {
		t.Errorf("expected no-pending-review error for unknown id, got %v", err)
	}
}

func TestStore_ConfigVersions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := model.DefaultThresholds()

	// No active version: base thresholds pass through
	if got := store.ActiveThresholds(base); got != base {
		t.Errorf("expected base thresholds, got %+v", got)
	}

	_, err := store.SaveConfigVersion(ctx,
		map[string]float64{"risk_confidence_threshold": 0.8, "allow_external_search": 0},
		map[string]string{"risk_assessment": "custom prompt"},
		"tighten the risk gate", true)
	if err != nil {
		t.Fatalf("save config version: %v", err)
	}

	got := store.ActiveThresholds(base)
	if got.RiskConfidence != 0.8 {
		t.Errorf("expected overridden risk confidence 0.8, got %.2f", got.RiskConfidence)
	}
	if got.ClaimConfidence != base.ClaimConfidence {
		t.Errorf("untouched thresholds must keep base values, got %.2f", got.ClaimConfidence)
	}
	if got.AllowExternalSearch {
		t.Error("a zero allow_external_search override must turn external search off")
	}

	prompts := store.ActivePrompts()
	if prompts["risk_assessment"] != "custom prompt" {
		t.Errorf("expected prompt override, got %v", prompts)
	}
}

func TestStore_OnlyOneActiveVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveConfigVersion(ctx, map[string]float64{"risk_confidence_threshold": 0.7}, nil, "first", true)
	if err != nil {
		t.Fatalf("save first version: %v", err)
	}
	_, err = store.SaveConfigVersion(ctx, map[string]float64{"risk_confidence_threshold": 0.9}, nil, "second", true)
	if err != nil {
		t.Fatalf("save second version: %v", err)
	}

	got := store.ActiveThresholds(model.DefaultThresholds())
	if got.RiskConfidence != 0.9 {
		t.Errorf("expected the latest active version to win, got %.2f", got.RiskConfidence)
	}
}

func TestStore_InactiveVersionIgnored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveConfigVersion(ctx, map[string]float64{"risk_confidence_threshold": 0.95}, nil, "staged", false)
	if err != nil {
		t.Fatalf("save staged version: %v", err)
	}

	base := model.DefaultThresholds()
	if got := store.ActiveThresholds(base); got.RiskConfidence != base.RiskConfidence {
		t.Errorf("staged version must not apply, got %.2f", got.RiskConfidence)
	}
}

func TestStore_Metrics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveDecision(ctx, "a", allowResult()); err != nil {
		t.Fatalf("save: %v", err)
	}
	highAllowed := allowResult()
	highAllowed.RiskAssessment.Tier = model.RiskHigh
	if _, err := store.SaveDecision(ctx, "b", highAllowed); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.SaveDecision(ctx, "c", escalatedResult()); err != nil {
		t.Fatalf("save: %v", err)
	}
	reviewID, err := store.CreateReview(ctx, "c", escalatedResult())
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if err := store.SubmitReview(ctx, reviewID, model.ActionAllow, "overturned"); err != nil {
		t.Fatalf("submit review: %v", err)
	}

	m, err := store.Metrics(ctx, 30)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	if m.TotalDecisions != 3 {
		t.Errorf("expected 3 decisions, got %d", m.TotalDecisions)
	}
	if m.ActionCounts[string(model.ActionAllow)] != 2 {
		t.Errorf("expected 2 allows, got %d", m.ActionCounts[string(model.ActionAllow)])
	}
	if m.HighRiskExposure < 0.33 || m.HighRiskExposure > 0.34 {
		t.Errorf("expected high-risk exposure 1/3, got %.3f", m.HighRiskExposure)
	}
	if m.EscalationRate < 0.33 || m.EscalationRate > 0.34 {
		t.Errorf("expected escalation rate 1/3, got %.3f", m.EscalationRate)
	}
	if m.FallbackUsageRate < 0.33 || m.FallbackUsageRate > 0.34 {
		t.Errorf("expected fallback rate 1/3, got %.3f", m.FallbackUsageRate)
	}
	if m.ReviewedCount != 1 {
		t.Errorf("expected 1 reviewed, got %d", m.ReviewedCount)
	}
	if m.ReversalRate != 1.0 {
		t.Errorf("expected reversal rate 1.0, got %.2f", m.ReversalRate)
	}
	if m.PendingReviews != 0 {
		t.Errorf("expected no pending reviews, got %d", m.PendingReviews)
	}
}
