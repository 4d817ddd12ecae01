package governance

import (
	"context"
	"fmt"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// Metrics summarizes decision behavior over a lookback window. These
// are the trust signals reviewed when tuning thresholds: a rising
// high-risk exposure rate or reversal rate means the matrix or the
// confidence gates need attention.
type Metrics struct {
	WindowDays        int            `json:"window_days"`
	TotalDecisions    int            `json:"total_decisions"`
	ActionCounts      map[string]int `json:"action_counts"`
	HighRiskExposure  float64        `json:"high_risk_exposure_rate"`
	EscalationRate    float64        `json:"escalation_rate"`
	FallbackUsageRate float64        `json:"fallback_usage_rate"`
	PendingReviews    int            `json:"pending_reviews"`
	ReviewedCount     int            `json:"reviewed_count"`
	ReversalRate      float64        `json:"reversal_rate"`
	MeanConfidence    float64        `json:"mean_confidence"`
}

// Metrics computes trust metrics over the last windowDays days
func (s *Store) Metrics(ctx context.Context, windowDays int) (*Metrics, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	m := &Metrics{
		WindowDays:   windowDays,
		ActionCounts: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT action, risk_tier, fallback_used, confidence
		FROM decision_records WHERE created_at >= ?`, since)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var highRiskAllowed, escalated, fallbacks int
	var confidenceSum float64
	for rows.Next() {
		var action, tier string
		var fallbackUsed int
		var confidence float64
		if err := rows.Scan(&action, &tier, &fallbackUsed, &confidence); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		m.TotalDecisions++
		m.ActionCounts[action]++
		confidenceSum += confidence
		if tier == string(model.RiskHigh) && action == string(model.ActionAllow) {
			highRiskAllowed++
		}
		if action == string(model.ActionEscalateHuman) || action == string(model.ActionHumanConfirmation) {
			escalated++
		}
		if fallbackUsed == 1 {
			fallbacks++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if m.TotalDecisions > 0 {
		n := float64(m.TotalDecisions)
		m.HighRiskExposure = float64(highRiskAllowed) / n
		m.EscalationRate = float64(escalated) / n
		m.FallbackUsageRate = float64(fallbacks) / n
		m.MeanConfidence = confidenceSum / n
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM review_requests WHERE status = ?`, model.ReviewPending).Scan(&m.PendingReviews)
	if err != nil {
		return nil, fmt.Errorf("count pending reviews: %w", err)
	}

	var reversed int
	rows, err = s.db.QueryContext(ctx, `
		SELECT system_action, human_action FROM review_requests
		WHERE status = ? AND created_at >= ?`, model.ReviewReviewed, since)
	if err != nil {
		return nil, fmt.Errorf("query reviewed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var systemAction, humanAction string
		if err := rows.Scan(&systemAction, &humanAction); err != nil {
			return nil, fmt.Errorf("scan reviewed: %w", err)
		}
		m.ReviewedCount++
		if humanAction != "" && humanAction != systemAction {
			reversed++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if m.ReviewedCount > 0 {
		m.ReversalRate = float64(reversed) / float64(m.ReviewedCount)
	}

	return m, nil
}
