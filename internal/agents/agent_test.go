package agents

import (
	"testing"
	"unicode/utf8"
)

func TestDecodeJSONResponse_PlainObject(t *testing.T) {
	var out struct {
		Tier string `json:"tier"`
	}
	if err := decodeJSONResponse(`{"tier": "High"}`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tier != "High" {
		t.Errorf("expected High, got %q", out.Tier)
	}
}

func TestDecodeJSONResponse_CodeFence(t *testing.T) {
	content := "```json\n{\"tier\": \"Low\"}\n```"

	var out struct {
		Tier string `json:"tier"`
	}
	if err := decodeJSONResponse(content, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tier != "Low" {
		t.Errorf("expected Low, got %q", out.Tier)
	}
}

func TestDecodeJSONResponse_ProseWrapped(t *testing.T) {
	content := `Here is the assessment you asked for: {"tier": "Medium"} Hope that helps!`

	var out struct {
		Tier string `json:"tier"`
	}
	if err := decodeJSONResponse(content, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tier != "Medium" {
		t.Errorf("expected Medium, got %q", out.Tier)
	}
}

func TestDecodeJSONResponse_Garbage(t *testing.T) {
	var out struct{}
	if err := decodeJSONResponse("I cannot answer that.", &out); err == nil {
		t.Error("expected error for non-JSON content")
	}
}

func TestClamp01(t *testing.T) {
	if got := clamp01(-0.5); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := clamp01(1.5); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	if got := clamp01(0.42); got != 0.42 {
		t.Errorf("expected 0.42, got %f", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	long := truncate("aaaaaaaaaa", 4)
	if len([]rune(long)) != 5 {
		t.Errorf("expected 4 chars plus ellipsis, got %q", long)
	}
	multi := truncate("héllo wörld", 7)
	if !utf8.ValidString(multi) {
		t.Errorf("truncation split a rune: %q", multi)
	}
	if multi != "héllo w…" {
		t.Errorf("expected rune-boundary cut, got %q", multi)
	}
}
