package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cynthialmy/llm-decision-flow/internal/governance"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

var (
	reviewStatus    string
	reviewLimit     int
	reviewAction    string
	reviewRationale string
)

// reviewCmd represents the review command group
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the human-review queue",
}

// reviewListCmd lists review requests
var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review requests",
	RunE:  runReviewList,
}

// reviewDecideCmd records a human decision
var reviewDecideCmd = &cobra.Command{
	Use:   "decide <id>",
	Short: "Record a human decision on a pending review",
	Long: `Decide closes a pending review with a human decision.

Example:
  decisionflow review decide 4f1c... --action allow --rationale "satire, not misinfo"
  decisionflow review decide 4f1c... --action escalate`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewDecide,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewDecideCmd)

	reviewListCmd.Flags().StringVar(&reviewStatus, "status", model.ReviewPending, "filter by status (pending, reviewed, all)")
	reviewListCmd.Flags().IntVar(&reviewLimit, "limit", 20, "maximum reviews to list")

	reviewDecideCmd.Flags().StringVar(&reviewAction, "action", "", "human decision (allow, label, escalate, confirm)")
	reviewDecideCmd.Flags().StringVar(&reviewRationale, "rationale", "", "reviewer rationale")
	_ = reviewDecideCmd.MarkFlagRequired("action")
}

func openStore() (*governance.Store, error) {
	cfg := loadConfig()
	return governance.NewStore(cfg.Governance.DBPath)
}

func runReviewList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	status := reviewStatus
	if status == "all" {
		status = ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reviews, err := store.ListReviews(ctx, status, reviewLimit)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Println("No review requests.")
		return nil
	}

	for _, r := range reviews {
		fmt.Printf("%s  %-8s  %s\n", r.ID, r.Status, r.CreatedAt.Format(time.RFC3339))
		fmt.Printf("    %s\n", truncateLine(r.Transcript, 90))
		if r.Result != nil {
			fmt.Printf("    system: %s (%s)\n", r.Result.Decision.Action, truncateLine(r.Result.Decision.EscalationReason, 70))
		}
		if r.Status == model.ReviewReviewed {
			fmt.Printf("    human:  %s", r.HumanAction)
			if r.HumanRationale != "" {
				fmt.Printf(" (%s)", truncateLine(r.HumanRationale, 70))
			}
			fmt.Println()
		}
	}
	return nil
}

func runReviewDecide(cmd *cobra.Command, args []string) error {
	action, ok := parseReviewAction(reviewAction)
	if !ok {
		return fmt.Errorf("unknown action %q (allow, label, escalate, confirm)", reviewAction)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.SubmitReview(ctx, args[0], action, reviewRationale); err != nil {
		return err
	}
	fmt.Printf("Review %s closed: %s\n", args[0], action)
	return nil
}

func parseReviewAction(v string) (model.DecisionAction, bool) {
	switch v {
	case "allow":
		return model.ActionAllow, true
	case "label", "downrank":
		return model.ActionLabelDownrank, true
	case "escalate":
		return model.ActionEscalateHuman, true
	case "confirm":
		return model.ActionHumanConfirmation, true
	default:
		return "", false
	}
}
