package recur

import (
	"fmt"
	"math"
	"time"
)

// IntervalStats summarizes the day gaps between consecutive occurrences.
// Statistics are raw on purpose: no smoothing or outlier removal, so the
// confidence scorer penalizes irregularity instead of hiding it.
type IntervalStats struct {
	Intervals              []int
	MeanDays               float64
	StdDevDays             float64
	CoefficientOfVariation float64
}

// computeIntervalStats derives gap statistics from an ascending list of
// dates. At least two dates are required. A zero mean (every transaction on
// the same day) yields an infinite coefficient of variation, which the
// detector treats as non-periodic.
func computeIntervalStats(dates []time.Time) (IntervalStats, error) {
	if len(dates) < 2 {
		return IntervalStats{}, fmt.Errorf("need at least 2 dates, got %d", len(dates))
	}

	intervals := make([]int, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gap := daysBetween(dates[i-1], dates[i])
		if gap < 0 {
			return IntervalStats{}, fmt.Errorf("dates not in ascending order at index %d", i)
		}
		intervals = append(intervals, gap)
	}

	var sum float64
	for _, gap := range intervals {
		sum += float64(gap)
	}
	mean := sum / float64(len(intervals))

	var sqDiff float64
	for _, gap := range intervals {
		d := float64(gap) - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(intervals)))

	cv := math.Inf(1)
	if mean > 0 {
		cv = stddev / mean
	}

	return IntervalStats{
		Intervals:              intervals,
		MeanDays:               mean,
		StdDevDays:             stddev,
		CoefficientOfVariation: cv,
	}, nil
}

// daysBetween returns whole calendar days from a to b, ignoring any time
// component.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
