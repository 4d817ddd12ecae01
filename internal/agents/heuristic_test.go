package agents

import (
	"testing"
)

func TestHeuristicClaims_KeywordMatch(t *testing.T) {
	transcript := "Vaccines cause autism in children. What a nice day outside?"

	claims := heuristicClaims(transcript)
	if len(claims) == 0 {
		t.Fatal("expected at least one claim")
	}
	if claims[0].Text != "Vaccines cause autism in children." {
		t.Errorf("unexpected claim text: %q", claims[0].Text)
	}
	if claims[0].Confidence != heuristicConfidence {
		t.Errorf("expected confidence %.2f, got %.2f", heuristicConfidence, claims[0].Confidence)
	}
}

func TestHeuristicClaims_Dedupe(t *testing.T) {
	transcript := "The earth is flat. The earth is flat. The earth is flat."

	claims := heuristicClaims(transcript)
	if len(claims) != 1 {
		t.Errorf("expected 1 deduplicated claim, got %d", len(claims))
	}
}

func TestHeuristicClaims_NoKeywords(t *testing.T) {
	claims := heuristicClaims("Hello there, good morning folks.")
	if len(claims) != 0 {
		t.Errorf("expected no claims, got %d", len(claims))
	}
}

func TestSplitSentences(t *testing.T) {
	text := "First sentence here. Second sentence follows! Third one asks? tiny."

	sentences := splitSentences(text)
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences (short fragment dropped), got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "First sentence here." {
		t.Errorf("unexpected first sentence: %q", sentences[0])
	}
}

func TestSplitSentences_NoTerminator(t *testing.T) {
	sentences := splitSentences("a trailing fragment without punctuation that is long enough")
	if len(sentences) != 1 {
		t.Errorf("expected trailing text to count as a sentence, got %d", len(sentences))
	}
}
