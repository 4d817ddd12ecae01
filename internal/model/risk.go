package model

// RiskTier classifies potential harm severity, independent of truthfulness
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// ParseRiskTier maps model output onto a known tier.
// Returns ("", false) for anything unmappable so callers can route
// the failure to a fallback model rather than guessing.
func ParseRiskTier(s string) (RiskTier, bool) {
	switch RiskTier(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskTier(s), true
	default:
		return "", false
	}
}

// Elevated reports whether the tier is Medium or High
func (t RiskTier) Elevated() bool {
	return t == RiskMedium || t == RiskHigh
}

// RiskAssessment is the risk scorer's verdict on a transcript.
// One per analysis run.
type RiskAssessment struct {
	Tier                  RiskTier `json:"tier"`
	Reasoning             string   `json:"reasoning"`
	Confidence            float64  `json:"confidence"`
	PotentialHarm         string   `json:"potential_harm"`
	EstimatedExposure     string   `json:"estimated_exposure"`
	VulnerablePopulations []string `json:"vulnerable_populations"`
	RouteReason           string   `json:"route_reason,omitempty"`
	ModelUsed             string   `json:"model_used,omitempty"`
}
