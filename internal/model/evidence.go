package model

import "time"

// SourceType classifies the provenance of an evidence item
type SourceType string

const (
	SourceAuthoritative   SourceType = "authoritative"
	SourceHighCredibility SourceType = "high_credibility"
	SourceScientific      SourceType = "scientific"
	SourceFactCheck       SourceType = "fact_check"
	SourceInternal        SourceType = "internal"
	SourceExternal        SourceType = "external"
	SourceUnknown         SourceType = "unknown"
)

// Credible reports whether the source type counts against an evidence
// gap. External search results and unknown provenance do not.
func (s SourceType) Credible() bool {
	switch s {
	case SourceAuthoritative, SourceHighCredibility, SourceScientific, SourceFactCheck, SourceInternal:
		return true
	default:
		return false
	}
}

// ParseSourceType maps metadata strings onto a known source type
func ParseSourceType(s string) SourceType {
	switch SourceType(s) {
	case SourceAuthoritative, SourceHighCredibility, SourceScientific, SourceFactCheck, SourceInternal, SourceExternal:
		return SourceType(s)
	default:
		return SourceUnknown
	}
}

// EvidenceItem is a single retrieved document or snippet
type EvidenceItem struct {
	Text           string     `json:"text"`
	Source         string     `json:"source"`
	SourceQuality  string     `json:"source_quality"`
	SourceType     SourceType `json:"source_type"`
	URL            string     `json:"url,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
}

// Evidence is the aggregate retrieval result for a claim set.
// Enrichment extends the lists in place and recomputes the confidence
// and gap flags; Factuality assessment reads it only after enrichment
// has completed.
type Evidence struct {
	Supporting         []EvidenceItem `json:"supporting"`
	Contradicting      []EvidenceItem `json:"contradicting"`
	Contextual         []EvidenceItem `json:"contextual"`
	EvidenceConfidence float64        `json:"evidence_confidence"`
	ConflictsPresent   bool           `json:"conflicts_present"`
	EvidenceGap        bool           `json:"evidence_gap"`
	EvidenceGapReason  string         `json:"evidence_gap_reason,omitempty"`
}

// Items returns all evidence items across the three lists
func (e *Evidence) Items() []EvidenceItem {
	items := make([]EvidenceItem, 0, len(e.Supporting)+len(e.Contradicting)+len(e.Contextual))
	items = append(items, e.Supporting...)
	items = append(items, e.Contradicting...)
	items = append(items, e.Contextual...)
	return items
}

// HasCredibleItem reports whether any item has a credible source type
func (e *Evidence) HasCredibleItem() bool {
	for _, item := range e.Items() {
		if item.SourceType.Credible() {
			return true
		}
	}
	return false
}
