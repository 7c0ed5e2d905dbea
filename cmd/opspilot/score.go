package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/scoring"
)

// scoreCmd runs the calculator on metrics given as flags; it needs no store or network.
func scoreCmd() *cobra.Command {
	var m entity.WorkflowMetrics
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score workflow metrics offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			calc := scoring.NewCalculator(cfg.Scoring.Weights, cfg.Scoring.Thresholds)
			score, bottlenecks := calc.Evaluate(m.Clamped())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "score: %d\n", score)
			printBottlenecks(out, bottlenecks)
			return nil
		},
	}
	cmd.Flags().Float64Var(&m.AvgTimeToFirstReviewHours, "first-review-hours", 0, "average hours to first review")
	cmd.Flags().Float64Var(&m.AvgTimeToMergeHours, "merge-hours", 0, "average hours to merge")
	cmd.Flags().Float64Var(&m.PctPRsOver36hNoReview, "pr-no-review-rate", 0, "share of PRs waiting >36h for review (0-1)")
	cmd.Flags().Float64Var(&m.AvgReviewsPerPR, "reviews-per-pr", 0, "average reviews per PR")
	cmd.Flags().Float64Var(&m.Unassigned24hRate, "unassigned-rate", 0, "share of issues unassigned after 24h (0-1)")
	cmd.Flags().Float64Var(&m.ReopenRate, "reopen-rate", 0, "share of reopened issues (0-1)")
	cmd.Flags().Float64Var(&m.Stale7dRatio, "stale-rate", 0, "share of open issues idle >7d (0-1)")
	cmd.Flags().IntVar(&m.BlockerMentions, "blocker-mentions", 0, "blocker mentions in chat")
	cmd.Flags().IntVar(&m.WindowDays, "window-days", entity.DefaultWindowDays, "lookback window in days")
	return cmd
}
