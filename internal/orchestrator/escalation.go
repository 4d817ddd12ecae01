package orchestrator

import (
	"strings"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// EscalationInput carries everything the escalation rules read
type EscalationInput struct {
	Decision        model.Decision
	Risk            model.RiskAssessment
	Policy          *model.PolicyInterpretation
	Evidence        *model.Evidence
	ClaimConfidence float64
	Thresholds      model.Thresholds
}

// EvaluateEscalation applies the human-review safety net on top of the
// decision matrix. The rules can only add escalation, never remove it:
// the matrix encodes normal policy while these rules tighten it.
// Returns whether review is required and the triggering reasons.
func EvaluateEscalation(in EscalationInput) (bool, []string) {
	var reasons []string

	if in.Decision.RequiresHumanReview {
		reasons = append(reasons, "decision action requires review")
	}

	elevated := in.Risk.Tier.Elevated()

	if elevated && in.Evidence != nil && in.Evidence.ConflictsPresent {
		reasons = append(reasons, "conflicting evidence at elevated risk")
	}

	if elevated && in.ClaimConfidence < in.Thresholds.ClaimConfidence {
		reasons = append(reasons, "low claim-extraction confidence at elevated risk")
	}

	if elevated && in.Risk.Confidence < in.Thresholds.RiskConfidence {
		reasons = append(reasons, "low-confidence risk assessment at elevated risk")
	}

	if in.Risk.Tier == model.RiskHigh && in.Policy != nil && in.Policy.PolicyConfidence < in.Thresholds.PolicyConfidence {
		reasons = append(reasons, "high risk with policy confidence below threshold")
	}

	if elevated && in.Policy != nil && in.Policy.ConflictDetected {
		reasons = append(reasons, "policy conflict detected at elevated risk")
	}

	return len(reasons) > 0, reasons
}

// applyEscalation folds the escalation verdict back into the decision
func applyEscalation(decision model.Decision, required bool, reasons []string) model.Decision {
	if !required || decision.RequiresHumanReview {
		if required {
			decision.RequiresHumanReview = true
		}
		return decision
	}

	decision.RequiresHumanReview = true
	if decision.EscalationReason == "" {
		decision.EscalationReason = strings.Join(reasons, "; ")
	}
	return decision
}
