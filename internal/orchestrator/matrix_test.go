package orchestrator

import (
	"testing"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

func decideWith(tier model.RiskTier, policyConfidence float64) model.Decision {
	return Decide(
		model.RiskAssessment{Tier: tier, Confidence: 0.9},
		&model.PolicyInterpretation{PolicyConfidence: policyConfidence},
	)
}

func TestDecide_Matrix(t *testing.T) {
	cases := []struct {
		name       string
		tier       model.RiskTier
		confidence float64
		want       model.DecisionAction
	}{
		{"low high-confidence allows", model.RiskLow, 0.7, model.ActionAllow},
		{"low full-confidence allows", model.RiskLow, 1.0, model.ActionAllow},
		{"low just-below-threshold labels", model.RiskLow, 0.69, model.ActionLabelDownrank},
		{"low zero-confidence labels", model.RiskLow, 0.0, model.ActionLabelDownrank},
		{"medium confident labels", model.RiskMedium, 0.6, model.ActionLabelDownrank},
		{"medium just-below-threshold escalates", model.RiskMedium, 0.59, model.ActionEscalateHuman},
		{"high low-confidence escalates", model.RiskHigh, 0.59, model.ActionEscalateHuman},
		{"high confident requires confirmation", model.RiskHigh, 0.6, model.ActionHumanConfirmation},
		{"high full-confidence requires confirmation", model.RiskHigh, 1.0, model.ActionHumanConfirmation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := decideWith(tc.tier, tc.confidence)
			if decision.Action != tc.want {
				t.Errorf("tier=%s confidence=%.2f: expected %s, got %s", tc.tier, tc.confidence, tc.want, decision.Action)
			}
		})
	}
}

func TestDecide_ReviewFlagTracksAction(t *testing.T) {
	allow := decideWith(model.RiskLow, 0.9)
	if allow.RequiresHumanReview {
		t.Error("Allow should not require review")
	}

	label := decideWith(model.RiskMedium, 0.8)
	if label.RequiresHumanReview {
		t.Error("Label / Downrank should not require review by itself")
	}

	escalate := decideWith(model.RiskMedium, 0.3)
	if !escalate.RequiresHumanReview {
		t.Error("Escalate to Human must require review")
	}

	confirm := decideWith(model.RiskHigh, 0.9)
	if !confirm.RequiresHumanReview {
		t.Error("Human Confirmation must require review")
	}
}

func TestDecide_NilPolicyEscalates(t *testing.T) {
	decision := Decide(model.RiskAssessment{Tier: model.RiskLow, Confidence: 0.95}, nil)

	if decision.Action != model.ActionEscalateHuman {
		t.Errorf("expected Escalate to Human, got %s", decision.Action)
	}
	if !decision.RequiresHumanReview {
		t.Error("expected review to be required")
	}
	if decision.Confidence != 0.0 {
		t.Errorf("expected zero confidence, got %.2f", decision.Confidence)
	}
	if decision.EscalationReason == "" {
		t.Error("expected an escalation reason")
	}
}

func TestDecide_ConfidenceMirrorsPolicy(t *testing.T) {
	decision := decideWith(model.RiskLow, 0.83)
	if decision.Confidence != 0.83 {
		t.Errorf("expected decision confidence 0.83, got %.2f", decision.Confidence)
	}
}

func TestDecide_NonAllowCarriesEscalationReason(t *testing.T) {
	decision := decideWith(model.RiskMedium, 0.8)
	if decision.EscalationReason == "" {
		t.Error("non-Allow decisions should carry an escalation reason")
	}

	allow := decideWith(model.RiskLow, 0.9)
	if allow.EscalationReason != "" {
		t.Errorf("Allow should not carry an escalation reason, got %q", allow.EscalationReason)
	}
}
