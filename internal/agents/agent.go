// Package agents implements the LLM-backed agents of the moderation
// pipeline: claim extraction, risk scoring, factuality assessment, and
// policy interpretation. The risk and policy agents route through a
// confidence-gated SLM-first fallback; every invocation produces an
// audit record.
package agents

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// decodeJSONResponse parses a model reply into out, tolerating markdown
// code fences around the JSON object
func decodeJSONResponse(content string, out interface{}) error {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	// Fall back to the outermost braces when the model wrapped the
	// object in prose
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start >= 0 && end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

// msSince returns elapsed milliseconds since start
func msSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// clamp01 bounds a confidence value to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncate shortens prompt text stored in audit records. It cuts on
// rune boundaries so multi-byte input is never left half a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
