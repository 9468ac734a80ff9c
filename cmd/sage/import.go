package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagebudget/sage/internal/cli"
	"github.com/sagebudget/sage/internal/common"
	"github.com/sagebudget/sage/internal/ingest"
	"github.com/sagebudget/sage/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from CSV files",
		Long: `Import transactions from CSV files with the columns
id, date, merchant_group_id, merchant_name, type, amount.

Examples:
  # Import a single export
  sage import ~/Downloads/transactions_2024.csv

  # Import everything at once
  sage import ~/Downloads/txns_*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Parse and validate without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	var allTransactions []model.Transaction
	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", filePath, err)
		}

		txns, err := ingest.ReadTransactions(f)
		_ = f.Close()
		if err != nil {
			return common.NewUserError(fmt.Sprintf("could not import %s", filepath.Base(filePath)), err)
		}

		slog.Info("Parsed file", "file", filepath.Base(filePath), "transactions", len(txns))
		allTransactions = append(allTransactions, txns...)
	}

	if dryRun {
		fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %d transaction(s) parsed from %d file(s) (dry run, nothing saved)",
			len(allTransactions), len(allFiles))))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	if err := store.SaveTransactions(ctx, allTransactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Imported %d transaction(s) from %d file(s)",
		len(allTransactions), len(allFiles))))
	fmt.Println(cli.SubtleStyle.Render("Run 'sage detect' to refresh recurring patterns."))
	return nil
}
