package recur

import (
	"regexp"
	"strings"
)

// ExclusionRule marks merchant names that look periodic but are not
// user-facing obligations (interest postings, internal transfers). Rules are
// data, not code branches: new exclusions are added by configuration without
// touching the detector.
type ExclusionRule struct {
	Name    string
	Pattern string
	IsRegex bool
}

// ExclusionMatcher evaluates merchant names against a configured rule set.
type ExclusionMatcher struct {
	compiled map[string]*regexp.Regexp
	rules    []ExclusionRule
}

// DefaultExclusions returns the built-in non-recurring merchant rules.
func DefaultExclusions() []ExclusionRule {
	return []ExclusionRule{
		{Name: "interest postings", Pattern: "interest"},
		{Name: "internal transfers", Pattern: "transfer"},
		{Name: "balance adjustments", Pattern: `\badjustment\b`, IsRegex: true},
		{Name: "cash withdrawals", Pattern: `\batm\b`, IsRegex: true},
	}
}

// NewExclusionMatcher creates a matcher with the given rules, pre-compiling
// regex patterns. Rules whose regex fails to compile are skipped.
func NewExclusionMatcher(rules []ExclusionRule) *ExclusionMatcher {
	m := &ExclusionMatcher{
		rules:    rules,
		compiled: make(map[string]*regexp.Regexp),
	}
	for _, rule := range rules {
		if rule.IsRegex && rule.Pattern != "" {
			if re, err := regexp.Compile("(?i)" + rule.Pattern); err == nil {
				m.compiled[rule.Pattern] = re
			}
		}
	}
	return m
}

// Excluded reports whether the merchant name matches any exclusion rule,
// and which rule matched.
func (m *ExclusionMatcher) Excluded(merchantName string) (bool, string) {
	name := strings.ToLower(merchantName)
	for _, rule := range m.rules {
		if rule.IsRegex {
			if re, ok := m.compiled[rule.Pattern]; ok && re.MatchString(name) {
				return true, rule.Name
			}
			continue
		}
		if rule.Pattern != "" && strings.Contains(name, strings.ToLower(rule.Pattern)) {
			return true, rule.Name
		}
	}
	return false, ""
}
