package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

var (
	analyzeTimeout   time.Duration
	analyzeFile      string
	analyzeJSONOut   string
	analyzeNoPersist bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [transcript]",
	Short: "Analyze a transcript and recommend a moderation action",
	Long: `Analyze runs one transcript through the full agent pipeline:
- Extract factual claims
- Score content risk (cheap classifier first, frontier fallback)
- Retrieve internal evidence, enriching from external search on novel claims
- Assess claim factuality against the evidence
- Interpret the platform policy
- Map the results onto a moderation decision with escalation rules

Example:
  decisionflow analyze "The earth is flat and vaccines cause autism"
  decisionflow analyze --file transcript.txt --json result.json
  decisionflow analyze "some claim" -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read the transcript from a file instead of an argument")
	analyzeCmd.Flags().StringVar(&analyzeJSONOut, "json", "", "write the full result bundle to a JSON file")
	analyzeCmd.Flags().BoolVar(&analyzeNoPersist, "no-persist", false, "do not record the decision in the governance store")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	transcript, err := resolveTranscript(args)
	if err != nil {
		return err
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d characters\n", len(transcript))
	}

	result := rt.orch.Analyze(ctx, transcript, progressPrinter())

	if !analyzeNoPersist && rt.store != nil {
		if id, err := rt.store.SaveDecision(ctx, transcript, result); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: decision not recorded: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Decision recorded: %s\n", id)
		}
		if result.Decision.RequiresHumanReview {
			if reviewID, err := rt.store.CreateReview(ctx, transcript, result); err == nil {
				result.ReviewRequestID = reviewID
			}
		}
	}

	if analyzeJSONOut != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(analyzeJSONOut, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Result written: %s\n", analyzeJSONOut)
	}

	printResult(result)
	return nil
}

func resolveTranscript(args []string) (string, error) {
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", fmt.Errorf("read transcript file: %w", err)
		}
		transcript := strings.TrimSpace(string(data))
		if transcript == "" {
			return "", fmt.Errorf("transcript file is empty: %s", analyzeFile)
		}
		return transcript, nil
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("provide a transcript argument or --file")
	}
	return strings.TrimSpace(args[0]), nil
}

// printResult writes a human-readable decision summary to stdout
func printResult(result *model.AnalysisResult) {
	fmt.Println()
	fmt.Printf("Decision:   %s\n", result.Decision.Action)
	fmt.Printf("Confidence: %.2f\n", result.Decision.Confidence)
	fmt.Printf("Risk tier:  %s (confidence %.2f)\n", result.RiskAssessment.Tier, result.RiskAssessment.Confidence)
	fmt.Printf("Rationale:  %s\n", result.Decision.Rationale)
	if result.Decision.RequiresHumanReview {
		fmt.Printf("Escalation: %s\n", result.Decision.EscalationReason)
	}
	if result.ReviewRequestID != "" {
		fmt.Printf("Review ID:  %s\n", result.ReviewRequestID)
	}

	if len(result.Claims) > 0 {
		fmt.Printf("\nClaims (%d):\n", len(result.Claims))
		for i, claim := range result.Claims {
			fmt.Printf("  %d. [%s] %s\n", i+1, claim.Domain, claim.Text)
		}
	}

	if len(result.Factuality) > 0 {
		fmt.Println("\nFactuality:")
		for _, fa := range result.Factuality {
			fmt.Printf("  %-22s %s\n", fa.Status, fa.ClaimText)
		}
	}

	fmt.Println("\nAgent trail:")
	for _, exec := range result.AgentExecutions {
		line := fmt.Sprintf("  %-24s %s", exec.AgentName, exec.Status)
		if exec.Status == model.StatusSkipped {
			line += " (" + exec.UserPrompt + ")"
		} else if exec.RouteReason != "" {
			line += " via " + exec.RouteReason
		}
		fmt.Println(line)
	}
}
