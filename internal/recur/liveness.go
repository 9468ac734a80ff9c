package recur

import "time"

// isActive decides pattern liveness: a pattern stays active while the gap
// since its last occurrence is within the expected interval times the recency
// multiplier (1.5 by default, allowing one missed or late cycle).
//
// Liveness has exactly two states and is re-derived on every recompute pass,
// so a lapsed pattern flips back to active on its own when a new matching
// transaction arrives.
func isActive(lastOccurrence time.Time, expectedIntervalDays float64, asOf time.Time, cfg Config) bool {
	if lastOccurrence.After(asOf) {
		return true
	}
	gap := float64(daysBetween(lastOccurrence, asOf))
	return gap <= expectedIntervalDays*cfg.RecencyMultiplier
}
