package recur

import "math"

// scoreConfidence blends sample size, interval regularity, and recency into
// a single score in [0,1].
//
// The blend is deliberately simple; what tests pin down is monotonicity, not
// the exact curve: more occurrences never lower the score, a higher
// coefficient of variation never raises it, and a lapsed pattern scores
// below a live one with identical history.
func scoreConfidence(occurrences int, intervalCV float64, daysSinceLast float64, expectedIntervalDays float64, cfg Config) float64 {
	if occurrences <= 0 || expectedIntervalDays <= 0 {
		return 0
	}

	// Occurrence evidence saturates: the difference between 12 and 13
	// sightings tells us much less than between 3 and 4.
	occurrence := 1 - math.Exp(-float64(occurrences)/cfg.OccurrenceSaturation)

	// Perfectly regular gaps score 1; regularity decays toward 0 as the
	// coefficient of variation grows.
	regularity := 1 / (1 + 2*intervalCV)
	if math.IsInf(intervalCV, 1) {
		regularity = 0
	}

	// No penalty while the next occurrence is not yet late; past that the
	// penalty grows with how many expected intervals have gone missing.
	recency := 1.0
	if daysSinceLast > expectedIntervalDays {
		overdue := (daysSinceLast - expectedIntervalDays) / expectedIntervalDays
		recency = math.Max(0, 1-overdue/2)
	}

	score := cfg.OccurrenceWeight*occurrence + cfg.RegularityWeight*regularity + cfg.RecencyWeight*recency
	return math.Min(1, math.Max(0, score))
}
