package model

import "time"

// AnalysisResult is the complete bundle returned by one analyze call
type AnalysisResult struct {
	Decision             Decision               `json:"decision"`
	Claims               []Claim                `json:"claims"`
	RiskAssessment       RiskAssessment         `json:"risk_assessment"`
	Evidence             *Evidence              `json:"evidence,omitempty"`
	Factuality           []FactualityAssessment `json:"factuality_assessments"`
	PolicyInterpretation *PolicyInterpretation  `json:"policy_interpretation,omitempty"`
	AgentExecutions      []AgentExecutionDetail `json:"agent_executions"`
	ReviewRequestID      string                 `json:"review_request_id,omitempty"`
}

// ReviewRequest is a human-review queue entry for an escalated
// decision. Persisted by the governance store.
type ReviewRequest struct {
	ID             string          `json:"id"`
	Transcript     string          `json:"transcript"`
	Result         *AnalysisResult `json:"result"`
	Status         string          `json:"status"` // pending or reviewed
	CreatedAt      time.Time       `json:"created_at"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	HumanAction    DecisionAction  `json:"human_action,omitempty"`
	HumanRationale string          `json:"human_rationale,omitempty"`
}

// Review statuses
const (
	ReviewPending  = "pending"
	ReviewReviewed = "reviewed"
)
