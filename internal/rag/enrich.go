package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// maxEnrichClaims caps how many claims trigger external queries
const maxEnrichClaims = 3

// Searcher is the external search collaborator consumed by the
// enricher
type Searcher interface {
	Search(ctx context.Context, query string) []SearchResultItem
}

// Enricher folds external search results into an Evidence object.
// Classification failures degrade to "contextual"; persistence is
// best-effort and never fails the enrichment call.
type Enricher struct {
	searcher       Searcher
	classifier     llm.Client
	classifyPrompt string
	index          *Index
	fetcher        *PageFetcher
	fetchFullPages bool
}

// NewEnricher creates an enricher. classifier may be nil (everything
// classifies as contextual); fetcher may be nil (snippets are indexed
// as-is when persistence is on). Persistence itself is decided per
// Enrich call so the governance store can toggle it at runtime.
func NewEnricher(searcher Searcher, classifier llm.Client, classifyPrompt string, index *Index, fetcher *PageFetcher, fetchFullPages bool) *Enricher {
	return &Enricher{
		searcher:       searcher,
		classifier:     classifier,
		classifyPrompt: classifyPrompt,
		index:          index,
		fetcher:        fetcher,
		fetchFullPages: fetchFullPages,
	}
}

// EnrichmentStats summarizes what one enrichment pass did
type EnrichmentStats struct {
	Queried       int
	Added         int
	Supporting    int
	Contradicting int
	Contextual    int
	Persisted     int
}

// Enrich queries external search for the first claims, classifies each
// snippet against its originating claim, and merges the results into
// evidence. Evidence confidence is monotonic: it never decreases.
// gapCause describes why enrichment ran (novelty, absent internal
// evidence, or both) and feeds the evidence-gap reason. persist
// controls best-effort indexing of the new items.
func (e *Enricher) Enrich(ctx context.Context, claims []model.Claim, evidence *model.Evidence, gapCause string, persist bool) EnrichmentStats {
	var stats EnrichmentStats
	var newDocs []Document

	limit := len(claims)
	if limit > maxEnrichClaims {
		limit = maxEnrichClaims
	}

	for _, claim := range claims[:limit] {
		results := e.searcher.Search(ctx, claim.Text)
		stats.Queried++

		for _, result := range results {
			text := result.Snippet
			if text == "" {
				text = result.Title
			}
			if text == "" {
				continue
			}

			item := model.EvidenceItem{
				Text:           text,
				Source:         result.Source,
				SourceQuality:  "external search result",
				SourceType:     model.SourceExternal,
				URL:            result.URL,
				RelevanceScore: 0.5,
			}

			switch e.classify(ctx, claim.Text, text) {
			case "supporting":
				evidence.Supporting = append(evidence.Supporting, item)
				stats.Supporting++
			case "contradicting":
				evidence.Contradicting = append(evidence.Contradicting, item)
				stats.Contradicting++
			default:
				evidence.Contextual = append(evidence.Contextual, item)
				stats.Contextual++
			}
			stats.Added++

			newDocs = append(newDocs, Document{
				Text:          text,
				Source:        result.Source,
				SourceQuality: "external search result",
				SourceType:    string(model.SourceExternal),
				URL:           result.URL,
			})
		}
	}

	if stats.Added == 0 {
		evidence.EvidenceGapReason = appendReason(evidence.EvidenceGapReason, gapCause+"; external search returned no results")
		return stats
	}

	// Monotonic confidence over the newly classified items
	classified := stats.Supporting + stats.Contradicting
	if classified > 0 {
		supportRatio := float64(stats.Supporting) / float64(classified)
		if newConfidence := supportRatio * 0.7; newConfidence > evidence.EvidenceConfidence {
			evidence.EvidenceConfidence = newConfidence
		}
	}
	evidence.ConflictsPresent = len(evidence.Contradicting) > 0

	// Recompute the gap over old and new items
	if evidence.HasCredibleItem() {
		evidence.EvidenceGap = false
		evidence.EvidenceGapReason = ""
	} else {
		evidence.EvidenceGap = true
		evidence.EvidenceGapReason = appendReason(gapCause, "external results only, no credible sources")
	}

	if persist && e.index != nil {
		stats.Persisted = e.persistDocs(ctx, newDocs)
	}
	return stats
}

// classify asks the classifier for a single-word verdict, defaulting
// to contextual on any failure
func (e *Enricher) classify(ctx context.Context, claimText, snippet string) string {
	if e.classifier == nil {
		return "contextual"
	}

	resp, err := e.classifier.Chat(ctx, llm.ChatRequest{
		System:      e.classifyPrompt,
		User:        fmt.Sprintf("Claim: %s\n\nSnippet: %s", claimText, snippet),
		Temperature: 0.0,
		MaxTokens:   5,
	})
	if err != nil {
		return "contextual"
	}

	switch word := strings.ToLower(strings.Trim(resp.Content, " .\"'\n")); word {
	case "supporting", "contradicting", "contextual":
		return word
	default:
		return "contextual"
	}
}

// persistDocs writes new external items into the long-term index.
// At-most-once and best-effort: failures are swallowed.
func (e *Enricher) persistDocs(ctx context.Context, docs []Document) int {
	if e.fetchFullPages && e.fetcher != nil {
		for i := range docs {
			if docs[i].URL == "" {
				continue
			}
			if text, err := e.fetcher.FetchText(ctx, docs[i].URL); err == nil && text != "" {
				docs[i].Text = text
			}
		}
	}

	if err := e.index.AddDocuments(ctx, docs); err != nil {
		return 0
	}
	if err := e.index.Save(); err != nil {
		return 0
	}
	return len(docs)
}

func appendReason(existing, extra string) string {
	if existing == "" {
		return extra
	}
	if extra == "" {
		return existing
	}
	return existing + "; " + extra
}
