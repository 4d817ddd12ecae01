package agents

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// defaultPolicyText is used when no policy file is configured
const defaultPolicyText = `Platform Misinformation Policy:

1. Health Misinformation: Content that makes false or misleading health claims that could cause harm is prohibited, except when clearly marked as personal experience or opinion.

2. Civic Misinformation: False information about elections, voting, or democratic processes is prohibited.

3. Financial Misinformation: False or misleading financial advice that could cause financial harm is prohibited.

4. Contextual Exceptions: Satire, clearly labeled opinion, and personal experiences are generally allowed even if factually incorrect.

5. Risk-Based Enforcement: Higher risk content requires stricter enforcement.`

// PolicyInterpreter determines violation status against a policy
// document. Like the risk scorer it is two-tier: cheap labeler first,
// frontier model when the label is missing, unmappable, or below the
// policy confidence threshold.
type PolicyInterpreter struct {
	labeler    *llm.LabelClient
	frontier   llm.Client
	prompts    *Registry
	policyText string
}

// NewPolicyInterpreter creates a policy interpreter, loading the
// policy document from path if it exists. labeler may be nil.
func NewPolicyInterpreter(labeler *llm.LabelClient, frontier llm.Client, prompts *Registry, policyPath string) *PolicyInterpreter {
	text := defaultPolicyText
	if policyPath != "" {
		if data, err := os.ReadFile(policyPath); err == nil {
			text = string(data)
		}
	}
	return &PolicyInterpreter{
		labeler:    labeler,
		frontier:   frontier,
		prompts:    prompts,
		policyText: text,
	}
}

type policyPayload struct {
	Violation        string   `json:"violation"`
	ViolationType    string   `json:"violation_type"`
	PolicyConfidence float64  `json:"policy_confidence"`
	AllowedContexts  []string `json:"allowed_contexts"`
	Reasoning        string   `json:"reasoning"`
	ConflictDetected bool     `json:"conflict_detected"`
}

// Interpret determines violation status. Returns nil when both paths
// fail; the orchestrator treats a missing interpretation as a hard
// escalation, never a silent allow.
func (p *PolicyInterpreter) Interpret(ctx context.Context, claims []model.Claim, factuality []model.FactualityAssessment, risk model.RiskAssessment, thresholds model.Thresholds) (*model.PolicyInterpretation, model.AgentExecutionDetail) {
	start := time.Now()
	detail := model.AgentExecutionDetail{
		AgentName: "Policy Agent",
		AgentType: "policy",
	}

	var primaryErr string

	// Primary: cheap labeler against the policy text as criteria
	if p.labeler != nil {
		content := claimsSummary(claims)
		result, err := p.labeler.Label(ctx, content, p.policyText)
		if err != nil {
			primaryErr = err.Error()
		} else if violation, ok := mapViolationLabel(result.Label); !ok {
			primaryErr = fmt.Sprintf("unmapped policy label %q", result.Label)
		} else if result.Confidence >= thresholds.PolicyConfidence {
			interpretation := &model.PolicyInterpretation{
				Violation:        violation,
				PolicyConfidence: clamp01(result.Confidence),
				Reasoning:        fmt.Sprintf("Fast-path policy label %q at confidence %.2f.", result.Label, result.Confidence),
				RouteReason:      model.RouteSLMPrimary,
				ModelUsed:        p.labeler.Model(),
			}
			detail.Status = model.StatusCompleted
			detail.Confidence = interpretation.PolicyConfidence
			detail.RouteReason = model.RouteSLMPrimary
			detail.ModelName = p.labeler.Model()
			detail.Provider = p.labeler.Name()
			detail.ExecutionTimeMS = msSince(start)
			return interpretation, detail
		} else {
			primaryErr = fmt.Sprintf("primary confidence %.2f below threshold %.2f", result.Confidence, thresholds.PolicyConfidence)
		}
	}

	// Fallback: frontier model
	routeReason := model.RouteFallbackFrontier
	if p.labeler == nil {
		routeReason = "frontier_only"
	}
	detail.RouteReason = routeReason
	detail.FallbackUsed = p.labeler != nil
	detail.ModelName = p.frontier.Model()
	detail.Provider = p.frontier.Name()

	interpretation, err := p.interpretFrontier(ctx, claims, factuality, risk)
	detail.ExecutionTimeMS = msSince(start)
	if err != nil {
		detail.Status = model.StatusError
		detail.Error = joinErrors(primaryErr, err.Error())
		return nil, detail
	}

	interpretation.RouteReason = routeReason
	interpretation.ModelUsed = p.frontier.Model()
	detail.Status = model.StatusCompleted
	detail.Confidence = interpretation.PolicyConfidence
	if primaryErr != "" {
		detail.Error = primaryErr
	}
	return interpretation, detail
}

// interpretFrontier invokes the frontier model for a full
// interpretation
func (p *PolicyInterpreter) interpretFrontier(ctx context.Context, claims []model.Claim, factuality []model.FactualityAssessment, risk model.RiskAssessment) (*model.PolicyInterpretation, error) {
	var factualityLines []string
	for _, fa := range factuality {
		factualityLines = append(factualityLines, fmt.Sprintf("- %s: %s (confidence: %.2f)", fa.ClaimText, fa.Status, fa.Confidence))
	}
	factualityText := strings.Join(factualityLines, "\n")
	if factualityText == "" {
		factualityText = "(none - factuality assessment was skipped)"
	}

	userPrompt := fmt.Sprintf(`Interpret the following policy and determine if the content violates it:

POLICY TEXT:
%s

CONTENT ANALYSIS:
Claims:
%s

Factuality Assessments:
%s

Risk Assessment: %s
Risk Reasoning: %s`, p.policyText, claimsSummary(claims), factualityText, risk.Tier, risk.Reasoning)

	resp, err := p.frontier.Chat(ctx, llm.ChatRequest{
		System:      p.prompts.Get(PromptPolicy),
		User:        userPrompt,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var decoded policyPayload
	if err := decodeJSONResponse(resp.Content, &decoded); err != nil {
		return nil, err
	}

	violation, ok := model.ParseViolationStatus(decoded.Violation)
	if !ok {
		return nil, fmt.Errorf("unmapped violation status %q", decoded.Violation)
	}

	return &model.PolicyInterpretation{
		Violation:        violation,
		ViolationType:    decoded.ViolationType,
		PolicyConfidence: clamp01(decoded.PolicyConfidence),
		AllowedContexts:  decoded.AllowedContexts,
		Reasoning:        decoded.Reasoning,
		ConflictDetected: decoded.ConflictDetected,
	}, nil
}

// mapViolationLabel maps a labeler verdict onto a violation status
func mapViolationLabel(label string) (model.ViolationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes", "violation", "violating":
		return model.ViolationYes, true
	case "no", "non-violating", "allowed":
		return model.ViolationNo, true
	case "contextual", "context-dependent":
		return model.ViolationContextual, true
	default:
		return "", false
	}
}

// claimsSummary renders claims one per line for prompts
func claimsSummary(claims []model.Claim) string {
	var lines []string
	for _, c := range claims {
		lines = append(lines, fmt.Sprintf("- %s (%s)", c.Text, c.Domain))
	}
	if len(lines) == 0 {
		return "(no claims extracted)"
	}
	return strings.Join(lines, "\n")
}
