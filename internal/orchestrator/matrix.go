package orchestrator

import (
	"fmt"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// Decide maps (risk tier, policy confidence) onto a final action.
// Pure function, no side effects. A missing policy interpretation is
// always a hard escalation, never a silent allow.
//
//	Low    + confidence >= 0.7  -> Allow
//	Low    + confidence <  0.7  -> Label / Downrank
//	Medium + confidence >= 0.6  -> Label / Downrank
//	Medium + confidence <  0.6  -> Escalate to Human
//	High   + confidence <  0.6  -> Escalate to Human
//	High   + confidence >= 0.6  -> Human Confirmation
func Decide(risk model.RiskAssessment, policy *model.PolicyInterpretation) model.Decision {
	if policy == nil {
		return model.Decision{
			Action:              model.ActionEscalateHuman,
			Rationale:           "Unable to interpret policy - requires human review",
			RequiresHumanReview: true,
			Confidence:          0.0,
			EscalationReason:    "Policy interpretation unavailable",
		}
	}

	confidence := policy.PolicyConfidence

	var action model.DecisionAction
	var rationale string

	switch risk.Tier {
	case model.RiskLow:
		if confidence >= 0.7 {
			action = model.ActionAllow
			rationale = fmt.Sprintf("Low risk content with high policy confidence (%.2f). Content does not violate policy.", confidence)
		} else {
			action = model.ActionLabelDownrank
			rationale = fmt.Sprintf("Low risk content but uncertain policy interpretation (%.2f). Apply label/downrank.", confidence)
		}
	case model.RiskMedium:
		if confidence >= 0.6 {
			action = model.ActionLabelDownrank
			rationale = fmt.Sprintf("Medium risk content with moderate policy confidence (%.2f). Apply label/downrank.", confidence)
		} else {
			action = model.ActionEscalateHuman
			rationale = fmt.Sprintf("Medium risk content with low policy confidence (%.2f). Requires human review.", confidence)
		}
	default: // High
		if confidence < 0.6 {
			action = model.ActionEscalateHuman
			rationale = fmt.Sprintf("High risk content with low policy confidence (%.2f). Escalate to human review.", confidence)
		} else {
			action = model.ActionHumanConfirmation
			rationale = fmt.Sprintf("High risk content with high policy confidence (%.2f). Requires human confirmation before action.", confidence)
		}
	}

	decision := model.Decision{
		Action:              action,
		Rationale:           rationale,
		RequiresHumanReview: action == model.ActionEscalateHuman || action == model.ActionHumanConfirmation,
		Confidence:          confidence,
	}
	if action != model.ActionAllow {
		decision.EscalationReason = rationale
	}
	return decision
}
