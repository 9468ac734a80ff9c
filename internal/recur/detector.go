package recur

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/sagebudget/sage/internal/model"
)

// Detector turns one merchant group's transaction history into zero or more
// recurring-pattern drafts. It holds only configuration, so a single
// Detector is safe to share across goroutines processing distinct groups.
type Detector struct {
	exclusions *ExclusionMatcher
	cfg        Config
}

// NewDetector creates a detector with the given thresholds and exclusion
// rules. A nil matcher falls back to the built-in exclusions.
func NewDetector(cfg Config, exclusions *ExclusionMatcher) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exclusions == nil {
		exclusions = NewExclusionMatcher(DefaultExclusions())
	}
	return &Detector{cfg: cfg, exclusions: exclusions}, nil
}

// Config returns the detector's thresholds.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect analyzes the transactions of a single merchant group as of the
// given evaluation time and returns draft patterns.
//
// Insufficient evidence is not an error: fewer than MinOccurrences
// transactions in any amount cluster simply yields nothing for that cluster.
// Genuinely invalid input (zero dates, unknown types, mixed merchant groups)
// fails fast because it indicates a caller bug. Output ordering is
// deterministic, so re-running on unchanged input yields identical drafts.
func (d *Detector) Detect(ctx context.Context, txns []model.Transaction, asOf time.Time) ([]model.RecurringPattern, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}

	groupID := txns[0].MerchantGroupID
	for i := range txns {
		if err := txns[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction: %w", err)
		}
		if txns[i].MerchantGroupID != groupID {
			return nil, fmt.Errorf("mixed merchant groups: %q and %q", groupID, txns[i].MerchantGroupID)
		}
	}

	merchantName := mostRecentName(txns)
	if excluded, rule := d.exclusions.Excluded(merchantName); excluded {
		slog.Debug("Merchant excluded from recurring detection",
			"merchant", merchantName, "rule", rule)
		return nil, nil
	}

	if len(txns) < d.cfg.MinOccurrences {
		return nil, nil
	}

	var drafts []model.RecurringPattern
	for _, txnType := range []model.TransactionType{model.TypeExpense, model.TypeIncome} {
		partition := filterByType(txns, txnType)
		for _, cluster := range clusterAmounts(partition, d.cfg) {
			if draft, ok := d.buildDraft(cluster, groupID, merchantName, txnType, asOf); ok {
				drafts = append(drafts, draft)
			}
		}
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		if drafts[i].Type != drafts[j].Type {
			return drafts[i].Type < drafts[j].Type
		}
		return drafts[i].ExpectedAmount < drafts[j].ExpectedAmount
	})
	return drafts, nil
}

// buildDraft runs interval, frequency, confidence and liveness analysis on
// one surviving amount cluster. ok is false when the cluster turns out to be
// non-periodic (same-day bursts, wildly irregular gaps).
func (d *Detector) buildDraft(cluster amountCluster, groupID, merchantName string, txnType model.TransactionType, asOf time.Time) (model.RecurringPattern, bool) {
	dates := make([]time.Time, len(cluster.members))
	for i, txn := range cluster.members {
		dates[i] = txn.Date
	}

	stats, err := computeIntervalStats(dates)
	if err != nil {
		return model.RecurringPattern{}, false
	}
	// Zero mean means every transaction landed on the same day; infinite or
	// extreme variation means coincidental repeats, not a schedule.
	if stats.MeanDays <= 0 || math.IsInf(stats.CoefficientOfVariation, 1) {
		return model.RecurringPattern{}, false
	}
	if stats.CoefficientOfVariation > d.cfg.MaxIntervalCV {
		return model.RecurringPattern{}, false
	}

	frequency, interval := classifyFrequency(stats.MeanDays, d.cfg)
	last := dates[len(dates)-1]
	expectedDays := approximateDays(frequency, interval)

	draft := model.RecurringPattern{
		MerchantGroupID:    groupID,
		MerchantName:       merchantName,
		Frequency:          frequency,
		Interval:           interval,
		Type:               txnType,
		ExpectedAmount:     cluster.medianAmount(),
		AmountVariance:     cluster.amountDispersion(),
		DetectionMethod:    cluster.method,
		OccurrenceCount:    len(cluster.members),
		LastOccurrenceDate: last,
		ConfidenceScore: scoreConfidence(len(cluster.members), stats.CoefficientOfVariation,
			float64(daysBetween(last, asOf)), expectedDays, d.cfg),
		IsActive: isActive(last, expectedDays, asOf, d.cfg),
	}
	draft.IsAmountVariable = draft.AmountVariance > d.cfg.VariableAmountCV

	switch frequency {
	case model.FrequencyMonthly, model.FrequencyBimonthly, model.FrequencyQuarterly, model.FrequencyYearly:
		day := dominantDayOfMonth(dates)
		week := dominantWeekOfMonth(dates)
		draft.DayOfMonth = &day
		draft.WeekOfMonth = &week
	case model.FrequencyWeekly, model.FrequencyBiweekly:
		weekday := dominantDayOfWeek(dates)
		draft.DayOfWeek = &weekday
	default:
	}

	draft.NextExpectedDate = nextExpectedDate(last, frequency, interval, draft.DayOfMonth)
	return draft, true
}

// filterByType returns the transactions with the given type, preserving order.
func filterByType(txns []model.Transaction, txnType model.TransactionType) []model.Transaction {
	var out []model.Transaction
	for _, txn := range txns {
		if txn.Type == txnType {
			out = append(out, txn)
		}
	}
	return out
}

// mostRecentName picks the display name from the latest transaction, which
// reflects the biller's current statement descriptor.
func mostRecentName(txns []model.Transaction) string {
	latest := txns[0]
	for _, txn := range txns[1:] {
		if txn.Date.After(latest.Date) {
			latest = txn
		}
	}
	if latest.MerchantName != "" {
		return latest.MerchantName
	}
	return latest.MerchantGroupID
}
