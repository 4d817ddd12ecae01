package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var metricsDays int

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show trust metrics over a lookback window",
	Long: `Metrics summarizes recent decision behavior: action distribution,
high-risk exposure, escalation rate, fallback usage, and how often
human reviewers reversed the system's recommendation.`,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().IntVar(&metricsDays, "days", 30, "lookback window in days")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := store.Metrics(ctx, metricsDays)
	if err != nil {
		return err
	}

	fmt.Printf("Last %d days\n", m.WindowDays)
	fmt.Printf("  Decisions:          %d\n", m.TotalDecisions)
	for action, count := range m.ActionCounts {
		fmt.Printf("    %-20s %d\n", action, count)
	}
	fmt.Printf("  High-risk exposure: %.1f%%\n", m.HighRiskExposure*100)
	fmt.Printf("  Escalation rate:    %.1f%%\n", m.EscalationRate*100)
	fmt.Printf("  Fallback usage:     %.1f%%\n", m.FallbackUsageRate*100)
	fmt.Printf("  Mean confidence:    %.2f\n", m.MeanConfidence)
	fmt.Printf("  Pending reviews:    %d\n", m.PendingReviews)
	if m.ReviewedCount > 0 {
		fmt.Printf("  Reversal rate:      %.1f%% of %d reviewed\n", m.ReversalRate*100, m.ReviewedCount)
	}
	return nil
}
