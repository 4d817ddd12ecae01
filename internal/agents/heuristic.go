package agents

import (
	"strings"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// heuristicConfidence is the fixed low confidence assigned to
// keyword-extracted claims. It sits below the claim confidence gate
// so heuristic-only runs lean toward escalation.
const heuristicConfidence = 0.3

// claimKeywords mark sentences likely to carry a checkable assertion
var claimKeywords = []string{
	"is", "are", "was", "were", "has", "have", "will",
	"causes", "caused", "cures", "prevents", "proves", "proven",
	"according to", "studies show", "research shows", "scientists",
	"never", "always", "every", "no one", "everyone",
	"percent", "%", "million", "billion",
}

// heuristicClaims extracts claims by sentence splitting and keyword
// matching. Used only when the extraction model is unavailable, so a
// transcript still enters the pipeline instead of being dropped.
func heuristicClaims(transcript string) []model.Claim {
	sentences := splitSentences(transcript)

	var claims []model.Claim
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, keyword := range claimKeywords {
			if strings.Contains(lower, keyword) {
				claims = append(claims, model.Claim{
					Text:                strings.TrimSpace(sentence),
					Domain:              model.DomainOther,
					IsExplicit:          true,
					Confidence:          heuristicConfidence,
					DecompositionMethod: "heuristic:" + keyword,
				})
				break // Only match once per sentence
			}
		}
	}

	return dedupeClaims(claims)
}

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= 10 && len(sentence) <= 500 {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		// Look ahead to avoid splitting on abbreviations
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' {
				flush()
			}
		}
	}
	if current.Len() > 0 {
		flush()
	}

	return sentences
}

// dedupeClaims removes duplicate claims
func dedupeClaims(claims []model.Claim) []model.Claim {
	seen := make(map[string]bool)
	var unique []model.Claim

	for _, claim := range claims {
		key := strings.ToLower(strings.TrimSpace(claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
