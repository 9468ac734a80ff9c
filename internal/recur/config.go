// Package recur implements the recurring-transaction detection engine.
//
// Given a merchant group's raw transaction history, the engine infers whether
// it represents one or more recurring obligations (subscriptions, bills,
// payroll), characterizes their cadence and expected amount, and quantifies
// confidence. The engine is a pure, synchronous computation: it performs no
// I/O and holds no shared state, so distinct merchant groups can be processed
// in parallel by the caller.
package recur

import (
	"fmt"

	"github.com/sagebudget/sage/internal/common"
)

// Config holds the tunable thresholds for the detection engine. All heuristic
// constants live here rather than inline so they can be adjusted and tested
// without code changes.
type Config struct {
	// MinOccurrences is the evidence threshold: amount clusters with fewer
	// members never become patterns.
	MinOccurrences int

	// ExactSeedCount is how many exact-cent repeats of one amount it takes
	// to seed a cluster before tolerance-based merging runs.
	ExactSeedCount int

	// AmountTolerance is the relative band around a cluster's median within
	// which an amount is considered the same obligation (0.10 = ±10%).
	AmountTolerance float64

	// VariableAmountCV marks a pattern's amount as variable once the
	// coefficient of variation of its cluster exceeds this value.
	VariableAmountCV float64

	// FrequencyTolerancePct and FrequencyToleranceDays define the window
	// around each canonical interval; the larger of the two wins.
	FrequencyTolerancePct  float64
	FrequencyToleranceDays float64

	// MaxIntervalCV is the regularity ceiling: clusters whose date gaps vary
	// more than this are treated as non-periodic and emit no pattern.
	MaxIntervalCV float64

	// RecencyMultiplier is the liveness tolerance: a pattern stays active
	// while the gap since its last occurrence is at most
	// expected interval × multiplier (1.5 allows one late cycle).
	RecencyMultiplier float64

	// Confidence blend weights. They should sum to 1; Validate enforces it.
	OccurrenceWeight float64
	RegularityWeight float64
	RecencyWeight    float64

	// OccurrenceSaturation controls diminishing returns on sample size:
	// the occurrence component approaches 1 around this many occurrences.
	OccurrenceSaturation float64
}

// DefaultConfig returns the default detection thresholds.
func DefaultConfig() Config {
	return Config{
		MinOccurrences:         3,
		ExactSeedCount:         3,
		AmountTolerance:        0.10,
		VariableAmountCV:       0.05,
		FrequencyTolerancePct:  0.15,
		FrequencyToleranceDays: 3,
		MaxIntervalCV:          0.75,
		RecencyMultiplier:      1.5,
		OccurrenceWeight:       0.35,
		RegularityWeight:       0.45,
		RecencyWeight:          0.20,
		OccurrenceSaturation:   7,
	}
}

// Validate checks the configuration for values that would break detection.
func (c Config) Validate() error {
	if c.MinOccurrences < 2 {
		return fmt.Errorf("%w: min occurrences must be >= 2, got %d", common.ErrInvalidConfig, c.MinOccurrences)
	}
	if c.AmountTolerance <= 0 || c.AmountTolerance >= 1 {
		return fmt.Errorf("%w: amount tolerance must be in (0,1), got %g", common.ErrInvalidConfig, c.AmountTolerance)
	}
	if c.FrequencyTolerancePct <= 0 {
		return fmt.Errorf("%w: frequency tolerance pct must be positive", common.ErrInvalidConfig)
	}
	if c.FrequencyToleranceDays <= 0 {
		return fmt.Errorf("%w: frequency tolerance days must be positive", common.ErrInvalidConfig)
	}
	if c.RecencyMultiplier < 1 {
		return fmt.Errorf("%w: recency multiplier must be >= 1, got %g", common.ErrInvalidConfig, c.RecencyMultiplier)
	}
	if c.OccurrenceSaturation <= 0 {
		return fmt.Errorf("%w: occurrence saturation must be positive", common.ErrInvalidConfig)
	}
	sum := c.OccurrenceWeight + c.RegularityWeight + c.RecencyWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: confidence weights must sum to 1, got %g", common.ErrInvalidConfig, sum)
	}
	return nil
}
