package cli

import (
	"fmt"
	"strings"

	"github.com/sagebudget/sage/internal/model"
)

// RenderPatterns formats recurring patterns as a table for terminal display.
func RenderPatterns(patterns []model.RecurringPattern) string {
	if len(patterns) == 0 {
		return SubtleStyle.Render("No recurring patterns found. Run 'sage detect' after importing transactions.")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Recurring Patterns"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-10s %-28s %-8s %-10s %10s %-12s %5s  %s",
		"ID", "MERCHANT", "TYPE", "FREQUENCY", "AMOUNT", "NEXT", "CONF", "STATUS")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, p := range patterns {
		row := fmt.Sprintf("%-10s %-28s %-8s %-10s %10s %-12s %5s  %s",
			shortID(p.ID),
			truncate(p.MerchantName, 28),
			p.Type,
			frequencyLabel(p),
			amountLabel(p),
			p.NextExpectedDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", p.ConfidenceScore),
			statusLabel(p))
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d pattern(s). Use 'sage patterns confirm <id>' to confirm one.", len(patterns))))
	return b.String()
}

// RenderPatternDetail formats a single pattern with all fields.
func RenderPatternDetail(p *model.RecurringPattern) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(p.MerchantName))
	b.WriteString("\n")

	write := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", SubtleStyle.Render(fmt.Sprintf("%-18s", label+":")), value))
	}

	write("ID", p.ID)
	write("Merchant group", p.MerchantGroupID)
	write("Type", string(p.Type))
	write("Frequency", frequencyLabel(*p))
	write("Expected amount", amountLabel(*p))
	write("Detection method", p.DetectionMethod)
	write("Occurrences", fmt.Sprintf("%d", p.OccurrenceCount))
	write("Confidence", fmt.Sprintf("%.2f", p.ConfidenceScore))
	write("Last occurrence", p.LastOccurrenceDate.Format("2006-01-02"))
	write("Next expected", p.NextExpectedDate.Format("2006-01-02"))
	write("Status", statusLabel(*p))
	if p.ReminderEnabled {
		write("Reminder", fmt.Sprintf("%d day(s) before", p.ReminderDaysBefore))
	} else {
		write("Reminder", "off")
	}
	if p.Notes != "" {
		write("Notes", p.Notes)
	}
	return b.String()
}

// shortID keeps tables readable; full IDs still work everywhere they are
// accepted as arguments.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func frequencyLabel(p model.RecurringPattern) string {
	if p.Frequency == model.FrequencyCustom {
		return fmt.Sprintf("every %dd", p.Interval)
	}
	return string(p.Frequency)
}

func amountLabel(p model.RecurringPattern) string {
	if p.IsAmountVariable {
		return fmt.Sprintf("~$%.2f", p.ExpectedAmount)
	}
	return fmt.Sprintf("$%.2f", p.ExpectedAmount)
}

func statusLabel(p model.RecurringPattern) string {
	var parts []string
	if p.IsActive {
		parts = append(parts, SuccessStyle.Render("active"))
	} else {
		parts = append(parts, WarningStyle.Render("lapsed"))
	}
	if p.IsConfirmed {
		parts = append(parts, BoldStyle.Render("confirmed"))
	}
	return strings.Join(parts, " ")
}
