package recur

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionMatcherDefaults(t *testing.T) {
	m := NewExclusionMatcher(DefaultExclusions())

	tests := []struct {
		name     string
		merchant string
		want     bool
	}{
		{name: "interest posting", merchant: "Interest Payment", want: true},
		{name: "interest mixed case", merchant: "INTEREST EARNED", want: true},
		{name: "internal transfer", merchant: "Transfer to Savings", want: true},
		{name: "atm as whole word", merchant: "ATM Withdrawal", want: true},
		{name: "atm inside another word", merchant: "Atmosphere Cafe", want: false},
		{name: "ordinary subscription", merchant: "Acme Streaming", want: false},
		{name: "utility bill", merchant: "City Power & Light", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := m.Excluded(tt.merchant)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExclusionMatcherCustomRules(t *testing.T) {
	m := NewExclusionMatcher([]ExclusionRule{
		{Name: "payroll reversals", Pattern: `reversal`, IsRegex: true},
		{Name: "fees", Pattern: "service fee"},
	})

	got, rule := m.Excluded("Payroll Reversal 2024-03")
	assert.True(t, got)
	assert.Equal(t, "payroll reversals", rule)

	got, rule = m.Excluded("Monthly Service Fee")
	assert.True(t, got)
	assert.Equal(t, "fees", rule)

	got, _ = m.Excluded("Netflix")
	assert.False(t, got)
}

func TestExclusionMatcherBadRegexSkipped(t *testing.T) {
	m := NewExclusionMatcher([]ExclusionRule{
		{Name: "broken", Pattern: "([", IsRegex: true},
	})
	got, _ := m.Excluded("anything")
	assert.False(t, got)
}
