package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// ClaimExtractor turns raw transcripts into tagged, possibly
// decomposed factual claims
type ClaimExtractor struct {
	client  llm.Client
	prompts *Registry
}

// NewClaimExtractor creates a claim extractor
func NewClaimExtractor(client llm.Client, prompts *Registry) *ClaimExtractor {
	return &ClaimExtractor{client: client, prompts: prompts}
}

type claimPayload struct {
	Text                string         `json:"text"`
	Domain              string         `json:"domain"`
	IsExplicit          bool           `json:"is_explicit"`
	Confidence          float64        `json:"confidence"`
	Subclaims           []claimPayload `json:"subclaims"`
	DecompositionMethod string         `json:"decomposition_method"`
}

type claimsResponse struct {
	Claims []claimPayload `json:"claims"`
}

// Extract extracts claims from a transcript. Returns the claims, the
// mean extraction confidence, and the audit record. A model failure
// yields an empty claim set with an error audit record rather than an
// error; downstream routing treats zero confidence conservatively.
func (e *ClaimExtractor) Extract(ctx context.Context, transcript string) ([]model.Claim, float64, model.AgentExecutionDetail) {
	start := time.Now()
	systemPrompt := e.prompts.Get(PromptClaimExtraction)
	userPrompt := fmt.Sprintf("Extract all factual claims from the following transcript:\n\n%s", transcript)

	detail := model.AgentExecutionDetail{
		AgentName:    "Claim Agent",
		AgentType:    "claim",
		SystemPrompt: truncate(systemPrompt, 500),
		UserPrompt:   truncate(userPrompt, 500),
		ModelName:    e.client.Model(),
		Provider:     e.client.Name(),
	}

	resp, err := e.client.Chat(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        userPrompt,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return e.degraded(transcript, err, start, detail)
	}

	var decoded claimsResponse
	if err := decodeJSONResponse(resp.Content, &decoded); err != nil {
		return e.degraded(transcript, err, start, detail)
	}

	claims := make([]model.Claim, 0, len(decoded.Claims))
	for _, c := range decoded.Claims {
		claims = append(claims, convertClaim(c, ""))
	}

	confidence := model.MeanClaimConfidence(claims)
	detail.Status = model.StatusCompleted
	detail.Confidence = confidence
	detail.ExecutionTimeMS = msSince(start)
	return claims, confidence, detail
}

// degraded falls back to keyword extraction so the transcript still
// enters the pipeline. Heuristic claims carry low confidence, which
// keeps the downstream routing conservative.
func (e *ClaimExtractor) degraded(transcript string, err error, start time.Time, detail model.AgentExecutionDetail) ([]model.Claim, float64, model.AgentExecutionDetail) {
	claims := heuristicClaims(transcript)
	detail.Status = model.StatusError
	detail.Error = err.Error()
	if len(claims) > 0 {
		detail.FallbackUsed = true
		detail.RouteReason = "heuristic_extraction"
	}
	detail.Confidence = model.MeanClaimConfidence(claims)
	detail.ExecutionTimeMS = msSince(start)
	return claims, detail.Confidence, detail
}

// convertClaim maps a payload to a model.Claim, carrying the parent
// text down the subclaim tree
func convertClaim(p claimPayload, parent string) model.Claim {
	claim := model.Claim{
		Text:                p.Text,
		Domain:              model.ParseDomain(p.Domain),
		IsExplicit:          p.IsExplicit,
		Confidence:          clamp01(p.Confidence),
		ParentClaim:         parent,
		DecompositionMethod: p.DecompositionMethod,
	}
	for _, sub := range p.Subclaims {
		claim.Subclaims = append(claim.Subclaims, convertClaim(sub, p.Text))
	}
	return claim
}
