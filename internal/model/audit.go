package model

// Agent execution statuses recorded in the audit trail
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

// Route reasons recorded by the confidence-gated fallback router
const (
	RouteSLMPrimary       = "slm_primary"
	RouteFallbackFrontier = "fallback_frontier"
)

// AgentExecutionDetail is one audit record per agent invocation.
// The orchestrator accumulates these in execution order, including
// skipped stages; the ordering is load-bearing for downstream review
// tooling.
type AgentExecutionDetail struct {
	AgentName       string  `json:"agent_name"`
	AgentType       string  `json:"agent_type"`
	SystemPrompt    string  `json:"system_prompt,omitempty"`
	UserPrompt      string  `json:"user_prompt,omitempty"`
	ModelName       string  `json:"model_name,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	Confidence      float64 `json:"confidence"`
	RouteReason     string  `json:"route_reason,omitempty"`
	FallbackUsed    bool    `json:"fallback_used"`
	ExecutionTimeMS int64   `json:"execution_time_ms"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
}

// SkippedExecution builds an audit record for a stage the router
// decided not to run
func SkippedExecution(agentName, agentType, reason string) AgentExecutionDetail {
	return AgentExecutionDetail{
		AgentName:  agentName,
		AgentType:  agentType,
		UserPrompt: reason,
		Status:     StatusSkipped,
	}
}
