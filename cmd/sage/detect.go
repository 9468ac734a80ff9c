package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sagebudget/sage/internal/cli"
	"github.com/sagebudget/sage/internal/refresh"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect recurring patterns across all merchant groups",
		Long: `Recompute recurring patterns from the stored transaction history.

Detection runs per merchant group and reconciles its findings with
previously saved patterns, so confirmations, notes and reminder settings
survive each run.`,
		RunE: runDetect,
	}

	cmd.Flags().String("as-of", "", "evaluation date (YYYY-MM-DD, default today)")
	cmd.Flags().Int("workers", 4, "number of merchant groups to process concurrently")

	return cmd
}

func runDetect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	asOf := time.Now()
	if raw, _ := cmd.Flags().GetString("as-of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --as-of date %q (want YYYY-MM-DD): %w", raw, err)
		}
		asOf = parsed
	}
	workers, _ := cmd.Flags().GetInt("workers")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	detector, err := initDetector()
	if err != nil {
		return fmt.Errorf("failed to initialize detector: %w", err)
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Detecting recurring patterns...[reset]"),
			)
		}
		_ = bar.Set(done)
	}

	refresher := refresh.NewRefresher(store, detector, workers, progress)
	result, err := refresher.Run(ctx, asOf)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Processed %d merchant group(s), %d pattern(s) up to date",
		result.GroupsProcessed, result.PatternsUpserted)))
	if result.GroupsFailed > 0 {
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("⚠ %d group(s) failed; see the log for details", result.GroupsFailed)))
	}
	fmt.Println(cli.SubtleStyle.Render("Run 'sage patterns list' to review."))
	return nil
}
