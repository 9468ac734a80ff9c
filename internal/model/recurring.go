package model

import (
	"fmt"
	"time"
)

// Frequency is the canonical cadence bucket for a recurring pattern.
type Frequency string

// Frequency constants.
const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBimonthly Frequency = "bimonthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

// ValidFrequency reports whether f is one of the known buckets.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyBimonthly, FrequencyQuarterly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// RecurringPattern describes one inferred recurring obligation for a merchant
// group. A single merchant group may yield several patterns when distinct
// amount clusters exist (e.g., two subscription tiers under one biller).
//
// Computed fields are fully replaced on every recompute pass. User-owned
// fields (IsConfirmed, Notes, ReminderEnabled, ReminderDaysBefore) are set by
// explicit user action and survive recomputation unchanged.
type RecurringPattern struct {
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastOccurrenceDate time.Time
	NextExpectedDate   time.Time
	ID                 string
	MerchantGroupID    string
	MerchantName       string
	Frequency          Frequency
	DetectionMethod    string
	Notes              string
	Type               TransactionType
	DayOfMonth         *int
	DayOfWeek          *time.Weekday
	WeekOfMonth        *int
	ExpectedAmount     float64
	AmountVariance     float64
	ConfidenceScore    float64
	Interval           int
	OccurrenceCount    int
	ReminderDaysBefore int
	IsAmountVariable   bool
	IsActive           bool
	IsConfirmed        bool
	ReminderEnabled    bool
}

// Validate ensures the pattern has internally consistent data.
func (p *RecurringPattern) Validate() error {
	if p.MerchantGroupID == "" {
		return fmt.Errorf("pattern %s: missing merchant group ID", p.ID)
	}
	if !ValidFrequency(p.Frequency) {
		return fmt.Errorf("pattern %s: invalid frequency %q", p.ID, p.Frequency)
	}
	if p.Interval < 1 {
		return fmt.Errorf("pattern %s: interval must be >= 1, got %d", p.ID, p.Interval)
	}
	if p.OccurrenceCount < 3 {
		return fmt.Errorf("pattern %s: occurrence count must be >= 3, got %d", p.ID, p.OccurrenceCount)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
		return fmt.Errorf("pattern %s: confidence must be between 0 and 1", p.ID)
	}
	if p.LastOccurrenceDate.IsZero() {
		return fmt.Errorf("pattern %s: missing last occurrence date", p.ID)
	}
	switch p.Type {
	case TypeIncome, TypeExpense:
	default:
		return fmt.Errorf("pattern %s: invalid transaction type %q", p.ID, p.Type)
	}
	if p.ReminderDaysBefore < 0 {
		return fmt.Errorf("pattern %s: reminder days before cannot be negative", p.ID)
	}
	return nil
}
