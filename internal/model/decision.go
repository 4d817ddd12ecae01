package model

// DecisionAction is the recommended moderation action
type DecisionAction string

const (
	ActionAllow             DecisionAction = "Allow"
	ActionLabelDownrank     DecisionAction = "Label / Downrank"
	ActionEscalateHuman     DecisionAction = "Escalate to Human"
	ActionHumanConfirmation DecisionAction = "Human Confirmation"
)

// Decision is the final recommendation for a transcript. It is a pure
// function of the risk assessment and policy interpretation; the
// pipeline never enforces, it only recommends.
type Decision struct {
	Action              DecisionAction `json:"action"`
	Rationale           string         `json:"rationale"`
	RequiresHumanReview bool           `json:"requires_human_review"`
	Confidence          float64        `json:"confidence"`
	EscalationReason    string         `json:"escalation_reason,omitempty"`
}
