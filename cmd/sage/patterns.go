package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagebudget/sage/internal/cli"
	"github.com/sagebudget/sage/internal/model"
	"github.com/sagebudget/sage/internal/service"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Review and manage detected recurring patterns",
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsShowCmd())
	cmd.AddCommand(patternsConfirmCmd())
	cmd.AddCommand(patternsNotesCmd())
	cmd.AddCommand(patternsReminderCmd())
	cmd.AddCommand(patternsDeleteCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List detected recurring patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			activeOnly, _ := cmd.Flags().GetBool("active")
			return withStorage(cmd, func(store service.Storage) error {
				patterns, err := store.ListPatterns(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list patterns: %w", err)
				}
				if activeOnly {
					active := patterns[:0]
					for _, p := range patterns {
						if p.IsActive {
							active = append(active, p)
						}
					}
					patterns = active
				}
				fmt.Println(cli.RenderPatterns(patterns))
				return nil
			})
		},
	}
	cmd.Flags().Bool("active", false, "only show active patterns")
	return cmd
}

func patternsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one pattern in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(store service.Storage) error {
				p, err := resolvePattern(cmd, store, args[0])
				if err != nil {
					return err
				}
				fmt.Println(cli.RenderPatternDetail(p))
				return nil
			})
		},
	}
}

func patternsConfirmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm <id>",
		Short: "Mark a pattern as confirmed",
		Long: `Confirm that a detected pattern is a real obligation. Confirmation is
yours: detection never sets or clears it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revoke, _ := cmd.Flags().GetBool("revoke")
			return withStorage(cmd, func(store service.Storage) error {
				p, err := resolvePattern(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.SetPatternConfirmed(cmd.Context(), p.ID, !revoke); err != nil {
					return fmt.Errorf("failed to update pattern: %w", err)
				}
				if revoke {
					fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s is no longer confirmed", p.MerchantName)))
				} else {
					fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Confirmed %s", p.MerchantName)))
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("revoke", false, "clear the confirmation instead")
	return cmd
}

func patternsNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id> [text...]",
		Short: "Set or clear the notes on a pattern",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := strings.Join(args[1:], " ")
			return withStorage(cmd, func(store service.Storage) error {
				p, err := resolvePattern(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.SetPatternNotes(cmd.Context(), p.ID, notes); err != nil {
					return fmt.Errorf("failed to update pattern: %w", err)
				}
				if notes == "" {
					fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Cleared notes on %s", p.MerchantName)))
				} else {
					fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Updated notes on %s", p.MerchantName)))
				}
				return nil
			})
		},
	}
}

func patternsReminderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder <id>",
		Short: "Configure the due-date reminder for a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disable, _ := cmd.Flags().GetBool("disable")
			days, _ := cmd.Flags().GetInt("days")
			return withStorage(cmd, func(store service.Storage) error {
				p, err := resolvePattern(cmd, store, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("days") {
					days = p.ReminderDaysBefore
				}
				if err := store.SetPatternReminder(cmd.Context(), p.ID, !disable, days); err != nil {
					return fmt.Errorf("failed to update pattern: %w", err)
				}
				if disable {
					fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Reminder off for %s", p.MerchantName)))
				} else {
					fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Reminder set: %d day(s) before %s is due", days, p.MerchantName)))
				}
				return nil
			})
		},
	}
	cmd.Flags().Int("days", 2, "days before the expected date to remind")
	cmd.Flags().Bool("disable", false, "turn the reminder off")
	return cmd
}

func patternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pattern permanently",
		Long: `Delete a detected pattern. If its transactions still look recurring the
next 'sage detect' run will recreate it as a fresh, unconfirmed pattern.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(store service.Storage) error {
				p, err := resolvePattern(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.DeletePattern(cmd.Context(), p.ID); err != nil {
					return fmt.Errorf("failed to delete pattern: %w", err)
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Deleted pattern for %s", p.MerchantName)))
				return nil
			})
		},
	}
}

// withStorage opens storage for one command invocation and closes it after.
func withStorage(cmd *cobra.Command, fn func(service.Storage) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()
	return fn(store)
}

// resolvePattern finds a pattern by full ID or unambiguous prefix, so the
// shortened IDs shown by 'patterns list' work as arguments.
func resolvePattern(cmd *cobra.Command, store service.Storage, id string) (*model.RecurringPattern, error) {
	p, err := store.GetPattern(cmd.Context(), id)
	if err == nil {
		return p, nil
	}

	patterns, listErr := store.ListPatterns(cmd.Context())
	if listErr != nil {
		return nil, fmt.Errorf("failed to look up pattern %s: %w", id, err)
	}

	var matches []model.RecurringPattern
	for _, candidate := range patterns {
		if strings.HasPrefix(candidate.ID, id) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no pattern found with ID %s", id)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("pattern ID %s is ambiguous (%d matches); use a longer prefix", id, len(matches))
	}
}
