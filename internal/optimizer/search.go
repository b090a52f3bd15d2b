package optimizer

import (
	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/cart"
	"github.com/xfinds/xfinds-backend/internal/catalog"
)

// bruteForce walks every assignment with an odometer over candidate indexes and returns
// the cheapest. Ties prefer fewer agent changes, then the earliest assignment visited.
func bruteForce(slots []slot, agents []catalog.Agent) []int {
	n := len(slots)
	odometer := make([]int, n)
	best := make([]int, n)
	scratch := make([]cart.Item, n)

	var (
		bestTotal   decimal.Decimal
		bestChanges int
		found       bool
	)
	for {
		changes := 0
		for i, s := range slots {
			scratch[i] = s.assign(odometer[i])
			if scratch[i].AgentID != s.item.AgentID {
				changes++
			}
		}
		total := totalOf(scratch, agents)
		if !found || total.LessThan(bestTotal) || (total.Equal(bestTotal) && changes < bestChanges) {
			copy(best, odometer)
			bestTotal = total
			bestChanges = changes
			found = true
		}
		if !advance(odometer, slots) {
			return best
		}
	}
}

// advance moves the odometer to the next assignment, reporting false after the last one.
func advance(odometer []int, slots []slot) bool {
	for i := len(odometer) - 1; i >= 0; i-- {
		if slots[i].pinned() {
			continue
		}
		odometer[i]++
		if odometer[i] < len(slots[i].candidates) {
			return true
		}
		odometer[i] = 0
	}
	return false
}

// greedy picks each line's cheapest line total (price times units plus shipping) on its
// own. Ties keep the current agent, then the earlier listed offer.
func greedy(slots []slot) []int {
	choices := make([]int, len(slots))
	for i, s := range slots {
		if s.pinned() {
			continue
		}
		units := s.item.Units()
		best := 0
		bestCost := landed(s.candidates[0], units)
		for j := 1; j < len(s.candidates); j++ {
			cost := landed(s.candidates[j], units)
			if cost.LessThan(bestCost) || (cost.Equal(bestCost) && s.candidates[j].current && !s.candidates[best].current) {
				best = j
				bestCost = cost
			}
		}
		choices[i] = best
	}
	return choices
}

func landed(c candidate, units int) decimal.Decimal {
	return c.price.Mul(decimal.NewFromInt(int64(units))).Add(c.shipFee)
}
