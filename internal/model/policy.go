package model

// ViolationStatus is the policy interpreter's verdict
type ViolationStatus string

const (
	ViolationYes        ViolationStatus = "Yes"
	ViolationNo         ViolationStatus = "No"
	ViolationContextual ViolationStatus = "Contextual"
)

// ParseViolationStatus maps model output onto a known status.
// Returns ("", false) for anything unmappable so callers can route
// the failure to a fallback model.
func ParseViolationStatus(s string) (ViolationStatus, bool) {
	switch ViolationStatus(s) {
	case ViolationYes, ViolationNo, ViolationContextual:
		return ViolationStatus(s), true
	default:
		return "", false
	}
}

// PolicyInterpretation is the result of interpreting the policy
// document against claims, factuality, and risk. One per run.
type PolicyInterpretation struct {
	Violation        ViolationStatus `json:"violation"`
	ViolationType    string          `json:"violation_type,omitempty"`
	PolicyConfidence float64         `json:"policy_confidence"`
	AllowedContexts  []string        `json:"allowed_contexts"`
	Reasoning        string          `json:"reasoning"`
	ConflictDetected bool            `json:"conflict_detected"`
	ModelUsed        string          `json:"model_used,omitempty"`
	RouteReason      string          `json:"route_reason,omitempty"`
}
