package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/worker"
)

var (
	batchTimeout     time.Duration
	batchConcurrency int
	batchJSONOut     string
	batchNoPersist   bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple transcripts concurrently",
	Long: `Batch reads transcripts from a file (one per line, # for comments)
and runs each through the pipeline using a worker pool.

Example:
  decisionflow batch transcripts.txt
  decisionflow batch transcripts.txt --concurrency 8 --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent analyses (default: config batch_workers)")
	batchCmd.Flags().StringVar(&batchJSONOut, "json", "", "write all result bundles to a JSON file")
	batchCmd.Flags().BoolVar(&batchNoPersist, "no-persist", false, "do not record decisions in the governance store")
}

// batchAnalyzer adapts the runtime to the worker pool, persisting
// each decision as it completes
type batchAnalyzer struct {
	rt      *runtime
	persist bool
}

func (a *batchAnalyzer) AnalyzeTranscript(ctx context.Context, transcript string) *model.AnalysisResult {
	result := a.rt.orch.Analyze(ctx, transcript, nil)
	if a.persist && a.rt.store != nil {
		if _, err := a.rt.store.SaveDecision(ctx, transcript, result); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: decision not recorded: %v\n", err)
		}
		if result.Decision.RequiresHumanReview {
			if reviewID, err := a.rt.store.CreateReview(ctx, transcript, result); err == nil {
				result.ReviewRequestID = reviewID
			}
		}
	}
	return result
}

func runBatch(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	concurrency := batchConcurrency
	if concurrency <= 0 {
		concurrency = rt.cfg.Concurrency.BatchWorkers
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	analyzer := &batchAnalyzer{rt: rt, persist: !batchNoPersist}
	processor := worker.NewBatchProcessor(analyzer, concurrency)

	start := time.Now()
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	actionCounts := make(map[model.DecisionAction]int)
	escalations := 0
	for _, res := range results {
		if res.Result == nil {
			continue
		}
		actionCounts[res.Result.Decision.Action]++
		if res.Result.Decision.RequiresHumanReview {
			escalations++
		}
		fmt.Printf("%-20s %s\n", res.Result.Decision.Action, truncateLine(res.Transcript, 70))
	}

	fmt.Printf("\nAnalyzed %d transcripts in %v\n", len(results), time.Since(start).Round(time.Millisecond))
	for action, count := range actionCounts {
		fmt.Printf("  %-20s %d\n", action, count)
	}
	if escalations > 0 {
		fmt.Printf("%d transcript(s) queued for human review\n", escalations)
	}

	if batchJSONOut != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		if err := os.WriteFile(batchJSONOut, data, 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Results written: %s\n", batchJSONOut)
	}

	return nil
}

func truncateLine(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
