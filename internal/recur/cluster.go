package recur

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sagebudget/sage/internal/model"
)

// Detection method tags recorded on emitted patterns. They describe which
// clustering path seeded the cluster; useful for debugging and tuning, not
// business logic.
const (
	MethodExactAmount = "exact-amount"
	MethodAmountBand  = "amount-band"
)

// amountCluster groups transactions whose amounts sit within the tolerance
// band of a common median. Members stay sorted by date.
type amountCluster struct {
	method  string
	members []model.Transaction
}

// median returns the cluster's median amount in cents.
func (c *amountCluster) median() int64 {
	cents := make([]int64, len(c.members))
	for i, txn := range c.members {
		cents[i] = toCents(txn.Amount)
	}
	sort.Slice(cents, func(i, j int) bool { return cents[i] < cents[j] })
	n := len(cents)
	if n%2 == 1 {
		return cents[n/2]
	}
	return (cents[n/2-1] + cents[n/2]) / 2
}

// medianAmount returns the median as a float dollar amount.
func (c *amountCluster) medianAmount() float64 {
	return float64(c.median()) / 100
}

// toCents rounds a dollar amount to whole cents. Rounding goes through
// decimal so 0.1+0.2 style float artifacts cannot split a cluster.
func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

// withinTolerance reports whether amount (cents) is inside the relative
// tolerance band around center (cents).
func withinTolerance(amount, center int64, tolerance float64) bool {
	if center == 0 {
		return amount == 0
	}
	diff := amount - center
	if diff < 0 {
		diff = -diff
	}
	band := float64(center) * tolerance
	if band < 0 {
		band = -band
	}
	return float64(diff) <= band
}

// clusterAmounts groups one merchant group's same-type transactions into
// amount clusters.
//
// Exact-cent repeats of at least cfg.ExactSeedCount form strong seeds first;
// remaining transactions merge into the nearest cluster whose median is
// within tolerance, or start singleton clusters. Clusters below
// cfg.MinOccurrences after assignment are dropped: they do not carry enough
// evidence to become patterns. When two clusters end up with overlapping
// tolerance bands, the larger cluster keeps its members and the smaller is
// re-evaluated, so gradual price drift does not duplicate a subscription.
func clusterAmounts(txns []model.Transaction, cfg Config) []amountCluster {
	if len(txns) == 0 {
		return nil
	}

	byDate := make([]model.Transaction, len(txns))
	copy(byDate, txns)
	sort.SliceStable(byDate, func(i, j int) bool { return byDate[i].Date.Before(byDate[j].Date) })

	// Pass 1: exact-cent seeds.
	byCents := make(map[int64][]model.Transaction)
	for _, txn := range byDate {
		c := toCents(txn.Amount)
		byCents[c] = append(byCents[c], txn)
	}

	seedCents := make([]int64, 0, len(byCents))
	for cents, members := range byCents {
		if len(members) >= cfg.ExactSeedCount {
			seedCents = append(seedCents, cents)
		}
	}
	sort.Slice(seedCents, func(i, j int) bool { return seedCents[i] < seedCents[j] })

	var clusters []amountCluster
	seeded := make(map[int64]bool)
	for _, cents := range seedCents {
		seeded[cents] = true
		clusters = append(clusters, amountCluster{
			method:  MethodExactAmount,
			members: byCents[cents],
		})
	}

	// Pass 2: merge the rest into the nearest in-tolerance cluster.
	for _, txn := range byDate {
		cents := toCents(txn.Amount)
		if seeded[cents] {
			continue
		}
		if idx := nearestCluster(clusters, cents, cfg.AmountTolerance); idx >= 0 {
			clusters[idx].members = append(clusters[idx].members, txn)
			continue
		}
		clusters = append(clusters, amountCluster{
			method:  MethodAmountBand,
			members: []model.Transaction{txn},
		})
	}

	clusters = resolveOverlaps(clusters, cfg)

	// Drop clusters without enough evidence and restore date order.
	kept := clusters[:0]
	for _, c := range clusters {
		if len(c.members) < cfg.MinOccurrences {
			continue
		}
		sort.SliceStable(c.members, func(i, j int) bool { return c.members[i].Date.Before(c.members[j].Date) })
		kept = append(kept, c)
	}

	// Deterministic output order: by median amount, then by first date.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].median() < kept[j].median() })
	return kept
}

// nearestCluster returns the index of the cluster whose median is closest to
// cents and within tolerance, or -1.
func nearestCluster(clusters []amountCluster, cents int64, tolerance float64) int {
	best := -1
	var bestDist int64
	for i := range clusters {
		med := clusters[i].median()
		if !withinTolerance(cents, med, tolerance) {
			continue
		}
		dist := cents - med
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// resolveOverlaps handles clusters whose tolerance bands overlap after
// drift: the larger cluster by member count wins, and the smaller cluster's
// members are re-assigned to it where they fit. Members that fit nowhere
// stay behind in the shrunken cluster, which is then subject to the normal
// minimum-size cut.
func resolveOverlaps(clusters []amountCluster, cfg Config) []amountCluster {
	sort.SliceStable(clusters, func(i, j int) bool { return len(clusters[i].members) > len(clusters[j].members) })

	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if !withinTolerance(clusters[j].median(), clusters[i].median(), cfg.AmountTolerance) {
				continue
			}
			var leftover []model.Transaction
			for _, txn := range clusters[j].members {
				if withinTolerance(toCents(txn.Amount), clusters[i].median(), cfg.AmountTolerance) {
					clusters[i].members = append(clusters[i].members, txn)
				} else {
					leftover = append(leftover, txn)
				}
			}
			clusters[j].members = leftover
		}
	}

	kept := clusters[:0]
	for _, c := range clusters {
		if len(c.members) > 0 {
			kept = append(kept, c)
		}
	}
	return kept
}

// amountDispersion returns the coefficient of variation of the cluster's
// amounts around their mean, for the pattern's variance field.
func (c *amountCluster) amountDispersion() float64 {
	if len(c.members) == 0 {
		return 0
	}
	var sum float64
	for _, txn := range c.members {
		sum += txn.Amount
	}
	mean := sum / float64(len(c.members))
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, txn := range c.members {
		d := txn.Amount - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(c.members)))
	return stddev / mean
}
