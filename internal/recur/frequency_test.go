package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sagebudget/sage/internal/model"
)

func TestClassifyFrequency(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name         string
		wantFreq     model.Frequency
		meanDays     float64
		wantInterval int
	}{
		{name: "daily", meanDays: 1, wantFreq: model.FrequencyDaily, wantInterval: 1},
		{name: "weekly exact", meanDays: 7, wantFreq: model.FrequencyWeekly, wantInterval: 1},
		{name: "weekly with jitter", meanDays: 8.5, wantFreq: model.FrequencyWeekly, wantInterval: 1},
		{name: "biweekly", meanDays: 14.2, wantFreq: model.FrequencyBiweekly, wantInterval: 1},
		{name: "monthly short february", meanDays: 28.2, wantFreq: model.FrequencyMonthly, wantInterval: 1},
		{name: "monthly long", meanDays: 31, wantFreq: model.FrequencyMonthly, wantInterval: 1},
		{name: "monthly nominal", meanDays: 30.4, wantFreq: model.FrequencyMonthly, wantInterval: 1},
		{name: "bimonthly", meanDays: 61, wantFreq: model.FrequencyBimonthly, wantInterval: 1},
		{name: "quarterly", meanDays: 92, wantFreq: model.FrequencyQuarterly, wantInterval: 1},
		{name: "yearly", meanDays: 370, wantFreq: model.FrequencyYearly, wantInterval: 1},
		{name: "custom forty days", meanDays: 40, wantFreq: model.FrequencyCustom, wantInterval: 40},
		{name: "custom five months", meanDays: 150, wantFreq: model.FrequencyCustom, wantInterval: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq, interval := classifyFrequency(tt.meanDays, cfg)
			assert.Equal(t, tt.wantFreq, freq)
			assert.Equal(t, tt.wantInterval, interval)
		})
	}
}

func TestDominantDayOfMonth(t *testing.T) {
	dates := []time.Time{
		day(2024, 1, 15), day(2024, 2, 15), day(2024, 3, 16), day(2024, 4, 15),
	}
	assert.Equal(t, 15, dominantDayOfMonth(dates))

	// Ties break toward the earliest day.
	tied := []time.Time{day(2024, 1, 3), day(2024, 2, 9), day(2024, 3, 3), day(2024, 4, 9)}
	assert.Equal(t, 3, dominantDayOfMonth(tied))
}

func TestDominantDayOfWeek(t *testing.T) {
	// Two Fridays, one Monday.
	dates := []time.Time{day(2024, 1, 5), day(2024, 1, 12), day(2024, 1, 8)}
	assert.Equal(t, time.Friday, dominantDayOfWeek(dates))
}

func TestDominantWeekOfMonth(t *testing.T) {
	dates := []time.Time{day(2024, 1, 2), day(2024, 2, 5), day(2024, 3, 1)}
	assert.Equal(t, 1, dominantWeekOfMonth(dates))

	late := []time.Time{day(2024, 1, 28), day(2024, 2, 25), day(2024, 3, 29)}
	assert.Equal(t, 4, dominantWeekOfMonth(late))
}

func TestNextExpectedDateAnchoredMonthEnd(t *testing.T) {
	anchor := 31
	next := nextExpectedDate(day(2024, 1, 31), model.FrequencyMonthly, 1, &anchor)
	assert.Equal(t, day(2024, 2, 29), next, "monthly on the 31st lands on leap-February's last day")

	next = nextExpectedDate(day(2023, 1, 31), model.FrequencyMonthly, 1, &anchor)
	assert.Equal(t, day(2023, 2, 28), next)

	// Anchor recovers after a short month.
	next = nextExpectedDate(day(2024, 2, 29), model.FrequencyMonthly, 1, &anchor)
	assert.Equal(t, day(2024, 3, 31), next)
}

func TestNextExpectedDateOtherFrequencies(t *testing.T) {
	assert.Equal(t, day(2024, 1, 8), nextExpectedDate(day(2024, 1, 1), model.FrequencyWeekly, 1, nil))
	assert.Equal(t, day(2024, 1, 15), nextExpectedDate(day(2024, 1, 1), model.FrequencyBiweekly, 1, nil))
	assert.Equal(t, day(2024, 1, 2), nextExpectedDate(day(2024, 1, 1), model.FrequencyDaily, 1, nil))
	assert.Equal(t, day(2024, 2, 10), nextExpectedDate(day(2024, 1, 1), model.FrequencyCustom, 40, nil))

	anchor := 15
	assert.Equal(t, day(2024, 3, 15), nextExpectedDate(day(2024, 1, 15), model.FrequencyBimonthly, 1, &anchor))
	assert.Equal(t, day(2024, 4, 15), nextExpectedDate(day(2024, 1, 15), model.FrequencyQuarterly, 1, &anchor))
	assert.Equal(t, day(2025, 1, 15), nextExpectedDate(day(2024, 1, 15), model.FrequencyYearly, 1, &anchor))
}

func TestApproximateDays(t *testing.T) {
	assert.InDelta(t, 30, approximateDays(model.FrequencyMonthly, 1), 1e-9)
	assert.InDelta(t, 14, approximateDays(model.FrequencyWeekly, 2), 1e-9)
	assert.InDelta(t, 40, approximateDays(model.FrequencyCustom, 40), 1e-9)
}
