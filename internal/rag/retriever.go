package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// Retriever finds internal evidence for a claim set
type Retriever struct {
	index *Index
}

// NewRetriever creates a retriever over the given index
func NewRetriever(index *Index) *Retriever {
	return &Retriever{index: index}
}

// Retrieve searches the index for each claim and assembles an
// Evidence object. Items at or above the similarity cutoff count as
// supporting; items above half the cutoff are kept as contextual.
// Contradictions are only produced by enrichment classification, not
// by similarity alone.
func (r *Retriever) Retrieve(ctx context.Context, claims []model.Claim, resultsPerClaim int, thresholds model.Thresholds) (*model.Evidence, model.AgentExecutionDetail) {
	start := time.Now()
	detail := model.AgentExecutionDetail{
		AgentName: "Evidence Agent",
		AgentType: "evidence",
	}

	evidence := &model.Evidence{}
	seen := make(map[string]bool)

	for _, claim := range claims {
		results, err := r.index.Search(ctx, claim.Text, resultsPerClaim)
		if err != nil {
			continue
		}
		for _, result := range results {
			if seen[result.Document.ID] {
				continue
			}

			item := model.EvidenceItem{
				Text:           result.Document.Text,
				Source:         result.Document.Source,
				SourceQuality:  result.Document.SourceQuality,
				SourceType:     model.ParseSourceType(result.Document.SourceType),
				URL:            result.Document.URL,
				Timestamp:      result.Document.Timestamp,
				RelevanceScore: result.Similarity,
			}

			switch {
			case result.Similarity >= thresholds.EvidenceSimilarity:
				evidence.Supporting = append(evidence.Supporting, item)
			case result.Similarity >= thresholds.EvidenceSimilarity/2:
				evidence.Contextual = append(evidence.Contextual, item)
			default:
				continue
			}
			seen[result.Document.ID] = true
		}
	}

	// Overall confidence tracks the support ratio, capped to account
	// for retrieval uncertainty
	total := len(evidence.Supporting) + len(evidence.Contradicting)
	if total > 0 {
		evidence.EvidenceConfidence = float64(len(evidence.Supporting)) / float64(total) * 0.8
	}
	evidence.ConflictsPresent = len(evidence.Contradicting) > 0

	if !evidence.HasCredibleItem() {
		evidence.EvidenceGap = true
		evidence.EvidenceGapReason = "no credible internal evidence found"
	}

	detail.Status = model.StatusCompleted
	detail.Confidence = evidence.EvidenceConfidence
	detail.UserPrompt = fmt.Sprintf("Retrieved evidence for %d claims (%d supporting, %d contextual).",
		len(claims), len(evidence.Supporting), len(evidence.Contextual))
	detail.ExecutionTimeMS = msSince(start)
	return evidence, detail
}

// MaxClaimSimilarity returns the maximum similarity over all claims
// against the active index version. Empty index or no matches count
// as 0.0, maximal novelty.
func (r *Retriever) MaxClaimSimilarity(ctx context.Context, claims []model.Claim) float64 {
	best := 0.0
	for _, claim := range claims {
		if sim, ok := r.index.MaxSimilarity(ctx, claim.Text); ok && sim > best {
			best = sim
		}
	}
	return best
}

// HasAnyDocuments reports whether the index has any active documents
func (r *Retriever) HasAnyDocuments() bool {
	return r.index.HasAnyDocuments()
}

func msSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
