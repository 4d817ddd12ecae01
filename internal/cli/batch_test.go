package cli

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 20); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncateLine("abcdefghij", 8); got != "abcde..." {
		t.Errorf("expected 5 chars plus dots, got %q", got)
	}
	multi := truncateLine("früher wäre das kaputt gegangen", 10)
	if !utf8.ValidString(multi) {
		t.Errorf("truncation split a rune: %q", multi)
	}
	if multi != "früher ..." {
		t.Errorf("expected rune-boundary cut, got %q", multi)
	}
}
