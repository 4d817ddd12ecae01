package model

// FactualityStatus labels a claim's truthfulness given the evidence
type FactualityStatus string

const (
	FactualityLikelyTrue  FactualityStatus = "Likely True"
	FactualityLikelyFalse FactualityStatus = "Likely False"
	FactualityUncertain   FactualityStatus = "Uncertain / Disputed"
)

// ParseFactualityStatus maps model output onto a known status,
// defaulting to Uncertain
func ParseFactualityStatus(s string) FactualityStatus {
	switch FactualityStatus(s) {
	case FactualityLikelyTrue, FactualityLikelyFalse, FactualityUncertain:
		return FactualityStatus(s)
	default:
		return FactualityUncertain
	}
}

// EvidenceMap records which quoted evidence bears on a claim and how
type EvidenceMap struct {
	Supports       []string `json:"supports"`
	Contradicts    []string `json:"contradicts"`
	DoesNotAddress []string `json:"does_not_address"`
}

// FactualityAssessment is the truthfulness verdict for one claim
type FactualityAssessment struct {
	ClaimText       string           `json:"claim_text"`
	Status          FactualityStatus `json:"status"`
	Confidence      float64          `json:"confidence"`
	Reasoning       string           `json:"reasoning"`
	EvidenceSummary string           `json:"evidence_summary"`
	EvidenceMap     EvidenceMap      `json:"evidence_map"`
	QuotedEvidence  []string         `json:"quoted_evidence,omitempty"`
}

// UncertainAssessments builds a conservative all-Uncertain assessment
// set, used when evidence is insufficient to judge the claims
func UncertainAssessments(claims []Claim, reason string) []FactualityAssessment {
	assessments := make([]FactualityAssessment, 0, len(claims))
	for _, c := range claims {
		assessments = append(assessments, FactualityAssessment{
			ClaimText:       c.Text,
			Status:          FactualityUncertain,
			Confidence:      0.0,
			Reasoning:       reason,
			EvidenceSummary: "Insufficient evidence to assess this claim.",
		})
	}
	return assessments
}
