package recur

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreConfidenceBounds(t *testing.T) {
	cfg := DefaultConfig()

	assert.Zero(t, scoreConfidence(0, 0, 0, 30, cfg))
	assert.Zero(t, scoreConfidence(6, 0, 10, 0, cfg))

	score := scoreConfidence(12, 0, 5, 30, cfg)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScoreConfidenceMonotonicInOccurrences(t *testing.T) {
	cfg := DefaultConfig()
	prev := -1.0
	for n := 3; n <= 24; n++ {
		score := scoreConfidence(n, 0.1, 10, 30, cfg)
		assert.GreaterOrEqual(t, score, prev, "more occurrences must never lower the score (n=%d)", n)
		prev = score
	}
}

func TestScoreConfidenceMonotonicInVariation(t *testing.T) {
	cfg := DefaultConfig()
	prev := 2.0
	for _, cv := range []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2} {
		score := scoreConfidence(6, cv, 10, 30, cfg)
		assert.LessOrEqual(t, score, prev, "higher variation must never raise the score (cv=%g)", cv)
		prev = score
	}
}

func TestScoreConfidenceInfiniteVariation(t *testing.T) {
	cfg := DefaultConfig()
	finite := scoreConfidence(6, 0.3, 10, 30, cfg)
	degenerate := scoreConfidence(6, math.Inf(1), 10, 30, cfg)
	assert.Less(t, degenerate, finite)
}

func TestScoreConfidencePenalizesLapsedPatterns(t *testing.T) {
	cfg := DefaultConfig()

	live := scoreConfidence(6, 0.1, 20, 30, cfg)
	lapsed := scoreConfidence(6, 0.1, 50, 30, cfg)
	longLapsed := scoreConfidence(6, 0.1, 120, 30, cfg)

	assert.Less(t, lapsed, live, "a lapsed pattern scores below a live one with identical history")
	assert.Less(t, longLapsed, lapsed)

	// No penalty accrues while the next occurrence is not yet late.
	assert.InDelta(t, live, scoreConfidence(6, 0.1, 29, 30, cfg), 1e-9)
}

func TestScoreConfidenceDiminishingReturns(t *testing.T) {
	cfg := DefaultConfig()
	gainEarly := scoreConfidence(4, 0.1, 10, 30, cfg) - scoreConfidence(3, 0.1, 10, 30, cfg)
	gainLate := scoreConfidence(13, 0.1, 10, 30, cfg) - scoreConfidence(12, 0.1, 10, 30, cfg)
	assert.Greater(t, gainEarly, gainLate)
}
