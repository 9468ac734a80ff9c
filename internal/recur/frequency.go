package recur

import (
	"math"
	"sort"
	"time"

	"github.com/sagebudget/sage/internal/model"
)

// canonicalInterval pairs a frequency bucket with its target gap in days.
type canonicalInterval struct {
	frequency model.Frequency
	days      float64
}

// Checked in order; the first bucket whose tolerance window contains the
// mean interval wins.
var canonicalIntervals = []canonicalInterval{
	{model.FrequencyDaily, 1},
	{model.FrequencyWeekly, 7},
	{model.FrequencyBiweekly, 14},
	{model.FrequencyMonthly, 30},
	{model.FrequencyBimonthly, 60},
	{model.FrequencyQuarterly, 91},
	{model.FrequencyYearly, 365},
}

// approximateDays returns the nominal length in days of one cycle of the
// given frequency, for liveness and recency checks.
func approximateDays(f model.Frequency, interval int) float64 {
	for _, c := range canonicalIntervals {
		if c.frequency == f {
			return c.days * float64(interval)
		}
	}
	return float64(interval)
}

// classifyFrequency maps a mean interval in days to a canonical bucket, or
// to custom with the rounded mean as the interval multiplier. The tolerance
// window is the larger of ±FrequencyTolerancePct and ±FrequencyToleranceDays.
// Month-length drift is accepted outright: means of 28–31 days are monthly.
func classifyFrequency(meanDays float64, cfg Config) (model.Frequency, int) {
	if meanDays >= 28 && meanDays <= 31 {
		return model.FrequencyMonthly, 1
	}

	for _, c := range canonicalIntervals {
		window := math.Max(c.days*cfg.FrequencyTolerancePct, cfg.FrequencyToleranceDays)
		if math.Abs(meanDays-c.days) <= window {
			return c.frequency, 1
		}
	}

	interval := int(math.Round(meanDays))
	if interval < 1 {
		interval = 1
	}
	return model.FrequencyCustom, interval
}

// dominantDayOfMonth returns the mode of the dates' days-of-month, ties
// broken by the earliest day.
func dominantDayOfMonth(dates []time.Time) int {
	return modeOf(dates, func(d time.Time) int { return d.Day() })
}

// dominantDayOfWeek returns the mode of the dates' weekdays, ties broken by
// the earliest weekday (Sunday first, matching time.Weekday ordering).
func dominantDayOfWeek(dates []time.Time) time.Weekday {
	return time.Weekday(modeOf(dates, func(d time.Time) int { return int(d.Weekday()) }))
}

// dominantWeekOfMonth returns the mode of which week of the month (1-based)
// the dates fall in, ties broken by the earliest week.
func dominantWeekOfMonth(dates []time.Time) int {
	return modeOf(dates, func(d time.Time) int { return (d.Day()-1)/7 + 1 })
}

// modeOf computes the most frequent key over dates, breaking ties toward the
// smallest key.
func modeOf(dates []time.Time, key func(time.Time) int) int {
	counts := make(map[int]int)
	for _, d := range dates {
		counts[key(d)]++
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	best, bestCount := 0, -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

// nextExpectedDate projects the next occurrence from the last one.
//
// Month-granular frequencies advance by calendar months anchored to the
// dominant day of month, clamping to the last day of shorter months so a
// pattern anchored to the 31st lands on Feb 29, not Mar 3. Week-granular
// frequencies advance by whole weeks. Custom patterns advance by the raw
// interval in days.
func nextExpectedDate(last time.Time, freq model.Frequency, interval int, dayOfMonth *int) time.Time {
	if interval < 1 {
		interval = 1
	}
	switch freq {
	case model.FrequencyMonthly, model.FrequencyBimonthly, model.FrequencyQuarterly, model.FrequencyYearly:
		months := interval
		switch freq {
		case model.FrequencyBimonthly:
			months = 2 * interval
		case model.FrequencyQuarterly:
			months = 3 * interval
		case model.FrequencyYearly:
			months = 12 * interval
		default:
		}
		anchor := last.Day()
		if dayOfMonth != nil {
			anchor = *dayOfMonth
		}
		return addMonthsAnchored(last, months, anchor)
	case model.FrequencyWeekly:
		return last.AddDate(0, 0, 7*interval)
	case model.FrequencyBiweekly:
		return last.AddDate(0, 0, 14*interval)
	case model.FrequencyDaily:
		return last.AddDate(0, 0, interval)
	default:
		return last.AddDate(0, 0, interval)
	}
}

// addMonthsAnchored advances by the given number of months, landing on the
// anchor day of month or the month's last day when the anchor overflows.
// time.AddDate's overflow normalization (Jan 31 + 1 month = Mar 3) is exactly
// what billing dates do not do.
func addMonthsAnchored(t time.Time, months, anchorDay int) time.Time {
	year, month, _ := t.Date()
	firstOfTarget := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)

	day := anchorDay
	if last := lastDayOfMonth(firstOfTarget); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// lastDayOfMonth returns the number of days in t's month.
func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
