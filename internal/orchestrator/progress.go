package orchestrator

// Pipeline stage names reported through the progress callback
const (
	StageClaims     = "claim_extraction"
	StageRisk       = "risk_assessment"
	StageEvidence   = "evidence_retrieval"
	StageEnrichment = "external_enrichment"
	StageFactuality = "factuality_assessment"
	StagePolicy     = "policy_interpretation"
	StageDecision   = "decision"
)

// Stage transition statuses
const (
	ProgressStarted   = "started"
	ProgressCompleted = "completed"
	ProgressSkipped   = "skipped"
)

// ProgressFunc receives named stage transitions for UI streaming.
// May be nil.
type ProgressFunc func(stage, status string)

// report invokes the callback if one is set
func (p ProgressFunc) report(stage, status string) {
	if p != nil {
		p(stage, status)
	}
}
