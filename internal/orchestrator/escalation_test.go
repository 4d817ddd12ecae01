package orchestrator

import (
	"strings"
	"testing"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

func baseEscalationInput() EscalationInput {
	return EscalationInput{
		Decision:        model.Decision{Action: model.ActionLabelDownrank},
		Risk:            model.RiskAssessment{Tier: model.RiskMedium, Confidence: 0.9},
		Policy:          &model.PolicyInterpretation{PolicyConfidence: 0.9},
		Evidence:        &model.Evidence{},
		ClaimConfidence: 0.9,
		Thresholds:      model.DefaultThresholds(),
	}
}

func TestEvaluateEscalation_NoTriggers(t *testing.T) {
	required, reasons := EvaluateEscalation(baseEscalationInput())
	if required {
		t.Errorf("expected no escalation, got reasons: %v", reasons)
	}
}

func TestEvaluateEscalation_ConflictingEvidence(t *testing.T) {
	in := baseEscalationInput()
	in.Evidence.ConflictsPresent = true

	required, reasons := EvaluateEscalation(in)
	if !required {
		t.Fatal("expected escalation for conflicting evidence at elevated risk")
	}
	if !containsReason(reasons, "conflicting evidence") {
		t.Errorf("expected a conflicting-evidence reason, got %v", reasons)
	}

	// Same conflict at low risk does not trigger
	in.Risk.Tier = model.RiskLow
	if required, _ := EvaluateEscalation(in); required {
		t.Error("conflicting evidence at low risk should not escalate")
	}
}

func TestEvaluateEscalation_LowClaimConfidence(t *testing.T) {
	in := baseEscalationInput()
	in.ClaimConfidence = 0.5 // below the 0.65 default

	required, reasons := EvaluateEscalation(in)
	if !required {
		t.Fatal("expected escalation for low claim confidence at elevated risk")
	}
	if !containsReason(reasons, "claim-extraction confidence") {
		t.Errorf("expected a claim-confidence reason, got %v", reasons)
	}
}

func TestEvaluateEscalation_LowRiskConfidence(t *testing.T) {
	in := baseEscalationInput()
	in.Risk.Confidence = 0.4

	required, _ := EvaluateEscalation(in)
	if !required {
		t.Error("expected escalation for low-confidence risk at elevated tier")
	}
}

func TestEvaluateEscalation_HighRiskLowPolicyConfidence(t *testing.T) {
	in := baseEscalationInput()
	in.Risk.Tier = model.RiskHigh
	in.Policy.PolicyConfidence = 0.65 // below the 0.7 default

	required, reasons := EvaluateEscalation(in)
	if !required {
		t.Fatal("expected escalation for high risk with low policy confidence")
	}
	if !containsReason(reasons, "policy confidence below threshold") {
		t.Errorf("expected a policy-confidence reason, got %v", reasons)
	}

	// Medium risk with the same policy confidence does not trigger this rule
	in.Risk.Tier = model.RiskMedium
	if required, _ := EvaluateEscalation(in); required {
		t.Error("policy confidence 0.65 at medium risk should not escalate")
	}
}

func TestEvaluateEscalation_PolicyConflict(t *testing.T) {
	in := baseEscalationInput()
	in.Policy.ConflictDetected = true

	required, _ := EvaluateEscalation(in)
	if !required {
		t.Error("expected escalation for detected policy conflict at elevated risk")
	}
}

func TestEvaluateEscalation_RespectsThresholdOverrides(t *testing.T) {
	in := baseEscalationInput()
	in.ClaimConfidence = 0.5
	in.Thresholds.ClaimConfidence = 0.4 // lowered override

	if required, reasons := EvaluateEscalation(in); required {
		t.Errorf("lowered threshold should suppress escalation, got %v", reasons)
	}
}

func TestApplyEscalation_OnlyAddsReview(t *testing.T) {
	decision := model.Decision{Action: model.ActionLabelDownrank}

	// Not required: decision unchanged
	out := applyEscalation(decision, false, nil)
	if out.RequiresHumanReview {
		t.Error("escalation must never be applied when not required")
	}

	// Required: review set, reasons recorded
	out = applyEscalation(decision, true, []string{"a", "b"})
	if !out.RequiresHumanReview {
		t.Error("expected review to be required")
	}
	if out.EscalationReason != "a; b" {
		t.Errorf("expected joined reasons, got %q", out.EscalationReason)
	}
}

func TestApplyEscalation_KeepsExistingReason(t *testing.T) {
	decision := model.Decision{
		Action:              model.ActionEscalateHuman,
		RequiresHumanReview: true,
		EscalationReason:    "matrix reason",
	}

	out := applyEscalation(decision, true, []string{"extra"})
	if out.EscalationReason != "matrix reason" {
		t.Errorf("existing escalation reason must be kept, got %q", out.EscalationReason)
	}
	if !out.RequiresHumanReview {
		t.Error("review must remain required")
	}
}

func containsReason(reasons []string, fragment string) bool {
	for _, r := range reasons {
		if strings.Contains(r, fragment) {
			return true
		}
	}
	return false
}
