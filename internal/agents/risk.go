package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

const riskCriteria = `Classify the content's potential-harm risk as "low", "medium", or "high" considering potential harm if false, likely exposure, and vulnerable populations. Ignore truthfulness and platform policy.`

// RiskScorer assigns a risk tier to content, independent of evidence.
// It attempts the cheap labeler first and falls back to the frontier
// model when the label is missing, unmappable, or low-confidence.
type RiskScorer struct {
	labeler  *llm.LabelClient
	frontier llm.Client
	prompts  *Registry
}

// NewRiskScorer creates a risk scorer. labeler may be nil, in which
// case every call routes straight to the frontier model.
func NewRiskScorer(labeler *llm.LabelClient, frontier llm.Client, prompts *Registry) *RiskScorer {
	return &RiskScorer{labeler: labeler, frontier: frontier, prompts: prompts}
}

type riskPayload struct {
	Tier                  string   `json:"tier"`
	Reasoning             string   `json:"reasoning"`
	Confidence            float64  `json:"confidence"`
	PotentialHarm         string   `json:"potential_harm"`
	EstimatedExposure     string   `json:"estimated_exposure"`
	VulnerablePopulations []string `json:"vulnerable_populations"`
}

// Score assesses the risk tier of a transcript. Never returns an
// error: a total failure of both paths yields a conservative Medium
// tier at zero confidence, which downstream routing treats as
// untrustworthy (skip evidence, escalate).
func (s *RiskScorer) Score(ctx context.Context, transcript string, claims []model.Claim, thresholds model.Thresholds) (model.RiskAssessment, model.AgentExecutionDetail) {
	start := time.Now()
	detail := model.AgentExecutionDetail{
		AgentName: "Risk Agent",
		AgentType: "risk",
	}

	var primaryErr string

	// Primary: cheap labeler
	if s.labeler != nil {
		result, err := s.labeler.Label(ctx, transcript, riskCriteria)
		if err != nil {
			primaryErr = err.Error()
		} else if tier, ok := mapRiskLabel(result.Label); !ok {
			primaryErr = fmt.Sprintf("unmapped risk label %q", result.Label)
		} else if result.Confidence >= thresholds.RiskConfidence {
			assessment := model.RiskAssessment{
				Tier:        tier,
				Reasoning:   fmt.Sprintf("Fast-path risk label %q at confidence %.2f.", result.Label, result.Confidence),
				Confidence:  clamp01(result.Confidence),
				RouteReason: model.RouteSLMPrimary,
				ModelUsed:   s.labeler.Model(),
			}
			detail.Status = model.StatusCompleted
			detail.Confidence = assessment.Confidence
			detail.RouteReason = model.RouteSLMPrimary
			detail.ModelName = s.labeler.Model()
			detail.Provider = s.labeler.Name()
			detail.ExecutionTimeMS = msSince(start)
			return assessment, detail
		} else {
			primaryErr = fmt.Sprintf("primary confidence %.2f below threshold %.2f", result.Confidence, thresholds.RiskConfidence)
		}
	}

	// Fallback: frontier model
	assessment, err := s.scoreFrontier(ctx, transcript, claims)
	fallbackUsed := s.labeler != nil
	routeReason := model.RouteFallbackFrontier
	if s.labeler == nil {
		routeReason = "frontier_only"
	}

	detail.RouteReason = routeReason
	detail.FallbackUsed = fallbackUsed
	detail.ModelName = s.frontier.Model()
	detail.Provider = s.frontier.Name()
	detail.ExecutionTimeMS = msSince(start)

	if err != nil {
		// Conservative default: an untrusted Medium keeps the full
		// pipeline off but forces escalation.
		detail.Status = model.StatusError
		detail.Error = joinErrors(primaryErr, err.Error())
		return model.RiskAssessment{
			Tier:        model.RiskMedium,
			Reasoning:   "Risk assessment unavailable: " + err.Error(),
			Confidence:  0.0,
			RouteReason: routeReason,
		}, detail
	}

	assessment.RouteReason = routeReason
	assessment.ModelUsed = s.frontier.Model()
	detail.Status = model.StatusCompleted
	detail.Confidence = assessment.Confidence
	if primaryErr != "" {
		detail.Error = primaryErr
	}
	return assessment, detail
}

// scoreFrontier invokes the frontier model for a full risk assessment
func (s *RiskScorer) scoreFrontier(ctx context.Context, transcript string, claims []model.Claim) (model.RiskAssessment, error) {
	var claimLines []string
	for _, c := range claims {
		claimLines = append(claimLines, fmt.Sprintf("- %s (%s)", c.Text, c.Domain))
	}

	userPrompt := fmt.Sprintf("Assess the risk of the following content:\n\nTranscript:\n%s\n\nExtracted Claims:\n%s",
		transcript, strings.Join(claimLines, "\n"))

	resp, err := s.frontier.Chat(ctx, llm.ChatRequest{
		System:      s.prompts.Get(PromptRiskAssessment),
		User:        userPrompt,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return model.RiskAssessment{}, err
	}

	var decoded riskPayload
	if err := decodeJSONResponse(resp.Content, &decoded); err != nil {
		return model.RiskAssessment{}, err
	}

	tier, ok := model.ParseRiskTier(decoded.Tier)
	if !ok {
		return model.RiskAssessment{}, fmt.Errorf("unmapped risk tier %q", decoded.Tier)
	}

	return model.RiskAssessment{
		Tier:                  tier,
		Reasoning:             decoded.Reasoning,
		Confidence:            clamp01(decoded.Confidence),
		PotentialHarm:         decoded.PotentialHarm,
		EstimatedExposure:     decoded.EstimatedExposure,
		VulnerablePopulations: decoded.VulnerablePopulations,
	}, nil
}

// mapRiskLabel maps a labeler verdict onto a risk tier
func mapRiskLabel(label string) (model.RiskTier, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return model.RiskLow, true
	case "medium", "moderate":
		return model.RiskMedium, true
	case "high":
		return model.RiskHigh, true
	default:
		return "", false
	}
}

// joinErrors combines primary and fallback error strings for audit
func joinErrors(primary, fallback string) string {
	if primary == "" {
		return fallback
	}
	return "primary: " + primary + "; fallback: " + fallback
}
