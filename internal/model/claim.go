package model

// Domain categorizes the subject area of a claim
type Domain string

const (
	DomainHealth  Domain = "health"
	DomainCivic   Domain = "civic"
	DomainFinance Domain = "finance"
	DomainOther   Domain = "other"
)

// ParseDomain maps free-form model output onto a known domain,
// defaulting to "other" for anything unrecognized
func ParseDomain(s string) Domain {
	switch Domain(s) {
	case DomainHealth, DomainCivic, DomainFinance:
		return Domain(s)
	default:
		return DomainOther
	}
}

// Claim represents a factual assertion extracted from a transcript.
// Compound claims carry decomposed subclaims; an atomic claim has an
// empty Subclaims list.
type Claim struct {
	Text                string  `json:"text"`
	Domain              Domain  `json:"domain"`
	IsExplicit          bool    `json:"is_explicit"`
	Confidence          float64 `json:"confidence"`
	Subclaims           []Claim `json:"subclaims,omitempty"`
	ParentClaim         string  `json:"parent_claim,omitempty"`
	DecompositionMethod string  `json:"decomposition_method,omitempty"`
}

// IsAtomic reports whether the claim has no subclaims
func (c Claim) IsAtomic() bool {
	return len(c.Subclaims) == 0
}

// MeanClaimConfidence aggregates extraction confidence as the
// arithmetic mean over top-level claims. Returns 0.0 for an empty set.
// Subclaims contribute through their parent's confidence only.
func MeanClaimConfidence(claims []Claim) float64 {
	if len(claims) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, c := range claims {
		sum += c.Confidence
	}
	return sum / float64(len(claims))
}
