package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// FactualityAssessor labels each claim's truthfulness given the
// retrieved evidence
type FactualityAssessor struct {
	client  llm.Client
	prompts *Registry
}

// NewFactualityAssessor creates a factuality assessor
func NewFactualityAssessor(client llm.Client, prompts *Registry) *FactualityAssessor {
	return &FactualityAssessor{client: client, prompts: prompts}
}

type factualityPayload struct {
	ClaimText       string   `json:"claim_text"`
	Status          string   `json:"status"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	EvidenceSummary string   `json:"evidence_summary"`
	EvidenceMap     struct {
		Supports       []string `json:"supports"`
		Contradicts    []string `json:"contradicts"`
		DoesNotAddress []string `json:"does_not_address"`
	} `json:"evidence_map"`
	QuotedEvidence []string `json:"quoted_evidence"`
}

type factualityResponse struct {
	Assessments []factualityPayload `json:"assessments"`
}

// Assess labels each claim against the evidence. A model failure
// degrades to a conservative all-Uncertain assessment set rather than
// an error.
func (a *FactualityAssessor) Assess(ctx context.Context, claims []model.Claim, evidence *model.Evidence) ([]model.FactualityAssessment, model.AgentExecutionDetail) {
	start := time.Now()
	systemPrompt := a.prompts.Get(PromptFactuality)
	userPrompt := buildFactualityPrompt(claims, evidence)

	detail := model.AgentExecutionDetail{
		AgentName:    "Factuality Agent",
		AgentType:    "factuality",
		SystemPrompt: truncate(systemPrompt, 500),
		UserPrompt:   truncate(userPrompt, 500),
		ModelName:    a.client.Model(),
		Provider:     a.client.Name(),
	}

	if evidence == nil || len(evidence.Items()) == 0 {
		detail.Status = model.StatusCompleted
		detail.ExecutionTimeMS = msSince(start)
		return model.UncertainAssessments(claims, "No evidence available to assess this claim."), detail
	}

	resp, err := a.client.Chat(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        userPrompt,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		detail.Status = model.StatusError
		detail.Error = err.Error()
		detail.ExecutionTimeMS = msSince(start)
		return model.UncertainAssessments(claims, "Factuality assessment unavailable: "+err.Error()), detail
	}

	var decoded factualityResponse
	if err := decodeJSONResponse(resp.Content, &decoded); err != nil {
		detail.Status = model.StatusError
		detail.Error = err.Error()
		detail.ExecutionTimeMS = msSince(start)
		return model.UncertainAssessments(claims, "Factuality assessment unparseable: "+err.Error()), detail
	}

	assessments := make([]model.FactualityAssessment, 0, len(decoded.Assessments))
	sum := 0.0
	for _, p := range decoded.Assessments {
		assessment := model.FactualityAssessment{
			ClaimText:       p.ClaimText,
			Status:          model.ParseFactualityStatus(p.Status),
			Confidence:      clamp01(p.Confidence),
			Reasoning:       p.Reasoning,
			EvidenceSummary: p.EvidenceSummary,
			EvidenceMap: model.EvidenceMap{
				Supports:       p.EvidenceMap.Supports,
				Contradicts:    p.EvidenceMap.Contradicts,
				DoesNotAddress: p.EvidenceMap.DoesNotAddress,
			},
			QuotedEvidence: p.QuotedEvidence,
		}
		sum += assessment.Confidence
		assessments = append(assessments, assessment)
	}

	detail.Status = model.StatusCompleted
	if len(assessments) > 0 {
		detail.Confidence = sum / float64(len(assessments))
	}
	detail.ExecutionTimeMS = msSince(start)
	return assessments, detail
}

// buildFactualityPrompt renders claims and quoted evidence for the model
func buildFactualityPrompt(claims []model.Claim, evidence *model.Evidence) string {
	var b strings.Builder
	b.WriteString("Assess the factuality of the following claims using ONLY the evidence below.\n\nClaims:\n")
	for _, c := range claims {
		fmt.Fprintf(&b, "- %s (%s)\n", c.Text, c.Domain)
		for _, sub := range c.Subclaims {
			fmt.Fprintf(&b, "  - %s\n", sub.Text)
		}
	}

	writeItems := func(title string, items []model.EvidenceItem) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "- %q (source: %s, type: %s)\n", item.Text, item.Source, item.SourceType)
		}
	}
	if evidence != nil {
		writeItems("Supporting evidence", evidence.Supporting)
		writeItems("Contradicting evidence", evidence.Contradicting)
		writeItems("Contextual evidence", evidence.Contextual)
	}

	return b.String()
}
