package rag

import (
	"testing"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

func TestDomainClassifier_Classify(t *testing.T) {
	c := NewDomainClassifier()

	cases := []struct {
		url  string
		want model.SourceType
	}{
		{"https://www.who.int/news/item/something", model.SourceAuthoritative},
		{"https://cdc.gov/measles", model.SourceAuthoritative},
		{"https://wwwnc.cdc.gov/travel", model.SourceAuthoritative},
		{"https://www.reuters.com/world/story", model.SourceHighCredibility},
		{"https://www.snopes.com/fact-check/x", model.SourceFactCheck},
		{"https://www.ncbi.nlm.nih.gov/pubmed/12345", model.SourceAuthoritative},
		{"https://doi.org/10.1000/xyz", model.SourceScientific},
		{"https://cityof.example.gov/notices", model.SourceAuthoritative},
		{"https://physics.ox.ac.uk/paper", model.SourceAuthoritative},
		{"https://randomblog.example.com/post", model.SourceExternal},
		{"not a url at all", model.SourceExternal},
		{"", model.SourceExternal},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.url); got != tc.want {
			t.Errorf("Classify(%q): expected %s, got %s", tc.url, tc.want, got)
		}
	}
}

func TestDomainClassifier_NoLookalikeMatches(t *testing.T) {
	c := NewDomainClassifier()

	// Suffix matching must not treat evil-cdc.gov.example.com as cdc.gov
	if got := c.Classify("https://cdc.gov.evil.example.com/page"); got != model.SourceExternal {
		t.Errorf("lookalike host must classify as external, got %s", got)
	}
}

func TestDomainClassifier_Quality(t *testing.T) {
	c := NewDomainClassifier()

	if got := c.Quality(model.SourceAuthoritative); got != "high" {
		t.Errorf("expected high, got %q", got)
	}
	if got := c.Quality(model.SourceExternal); got != "unverified" {
		t.Errorf("expected unverified, got %q", got)
	}
}
