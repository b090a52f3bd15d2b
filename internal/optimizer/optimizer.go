// Package optimizer reassigns cart lines across agents to lower the cart's landed cost.
package optimizer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/cart"
	"github.com/xfinds/xfinds-backend/internal/catalog"
)

const (
	// DefaultBruteForceLimit is the largest cart searched exhaustively.
	DefaultBruteForceLimit = 6
	// DefaultMaxCombinations bounds the exhaustive search; larger spaces fall back to greedy.
	DefaultMaxCombinations = 200000
)

// Options tunes the search.
type Options struct {
	BruteForceLimit int
	MaxCombinations int
	// InStockOnly drops out-of-stock offers from the candidate sets.
	InStockOnly bool
}

// RunObserver receives one observation per optimization.
type RunObserver interface {
	ObserveRun(strategy string, took time.Duration, savings float64, changes int)
}

// Engine runs cart optimizations with fixed options. It is safe for concurrent use.
type Engine struct {
	opts     Options
	observer RunObserver
}

// New builds an engine. A zero BruteForceLimit uses the default; a negative one always
// searches greedily.
func New(opts Options, observer RunObserver) *Engine {
	if opts.BruteForceLimit == 0 {
		opts.BruteForceLimit = DefaultBruteForceLimit
	}
	if opts.MaxCombinations <= 0 {
		opts.MaxCombinations = DefaultMaxCombinations
	}
	return &Engine{opts: opts, observer: observer}
}

// OptimizeCartItems runs the default engine.
func OptimizeCartItems(items []cart.Item, agents []catalog.Agent, products []catalog.Product) cart.OptimizationResult {
	return New(Options{}, nil).Optimize(items, agents, products)
}

// candidate is one offer an item may be moved to.
type candidate struct {
	agentID string
	price   decimal.Decimal
	shipFee decimal.Decimal
	link    string
	// current marks the offer matching the item's present agent.
	current bool
}

// slot is one cart line and the offers it may take. Pinned slots have no candidates.
type slot struct {
	item       cart.Item
	candidates []candidate
}

func (s slot) pinned() bool { return len(s.candidates) == 0 }

func (s slot) assign(choice int) cart.Item {
	if s.pinned() {
		return s.item
	}
	c := s.candidates[choice]
	return s.item.Reassign(c.agentID, c.price, c.shipFee, c.link)
}

// Optimize never mutates items and never returns nil slices.
func (e *Engine) Optimize(items []cart.Item, agents []catalog.Agent, products []catalog.Product) cart.OptimizationResult {
	started := time.Now()
	if len(items) == 0 {
		return cart.OptimizationResult{
			OptimizedItems: []cart.Item{},
			Savings:        decimal.Zero,
			Changes:        []cart.Change{},
			Strategy:       cart.StrategyNone,
			CurrentTotal:   decimal.Zero,
			OptimizedTotal: decimal.Zero,
		}
	}

	original := cart.CloneItems(items)
	slots := e.buildSlots(original, products)
	currentTotal := totalOf(original, agents)

	var (
		choices  []int
		strategy cart.Strategy
	)
	switch {
	case !anySubstitutable(slots):
		strategy = cart.StrategyNone
	case len(slots) <= e.opts.BruteForceLimit && combinations(slots, e.opts.MaxCombinations) <= e.opts.MaxCombinations:
		choices = bruteForce(slots, agents)
		strategy = cart.StrategyBruteForce
	default:
		choices = greedy(slots)
		strategy = cart.StrategyGreedy
	}

	optimized := make([]cart.Item, len(slots))
	changes := make([]cart.Change, 0)
	for i, s := range slots {
		if choices == nil || s.pinned() {
			optimized[i] = s.item
			continue
		}
		optimized[i] = s.assign(choices[i])
		if optimized[i].AgentID != s.item.AgentID {
			changes = append(changes, cart.Change{
				OfferID:     s.item.OfferID,
				FromAgentID: s.item.AgentID,
				ToAgentID:   optimized[i].AgentID,
			})
		}
	}

	optimizedTotal := totalOf(optimized, agents)
	savings := currentTotal.Sub(optimizedTotal)
	if savings.IsNegative() {
		savings = decimal.Zero
	}

	result := cart.OptimizationResult{
		OptimizedItems: optimized,
		Savings:        savings,
		Changes:        changes,
		Strategy:       strategy,
		CurrentTotal:   currentTotal,
		OptimizedTotal: optimizedTotal,
	}
	if e.observer != nil {
		e.observer.ObserveRun(string(strategy), time.Since(started), savings.InexactFloat64(), len(changes))
	}
	return result
}

func (e *Engine) buildSlots(items []cart.Item, products []catalog.Product) []slot {
	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		if _, dup := byID[products[i].ID]; !dup {
			byID[products[i].ID] = &products[i]
		}
	}

	slots := make([]slot, len(items))
	for i, item := range items {
		slots[i] = slot{item: item}
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		seen := make(map[string]struct{}, len(product.Offers))
		for _, offer := range product.Offers {
			if !offer.WellFormed() {
				continue
			}
			if e.opts.InStockOnly && !offer.InStock && offer.AgentID != item.AgentID {
				continue
			}
			if _, dup := seen[offer.AgentID]; dup {
				continue
			}
			seen[offer.AgentID] = struct{}{}
			slots[i].candidates = append(slots[i].candidates, candidate{
				agentID: offer.AgentID,
				price:   offer.Price.Decimal,
				shipFee: offer.ShipFee.Decimal,
				link:    offer.Link,
				current: offer.AgentID == item.AgentID,
			})
		}
	}
	return slots
}

func anySubstitutable(slots []slot) bool {
	for _, s := range slots {
		if !s.pinned() {
			return true
		}
	}
	return false
}

// combinations returns the size of the search space, saturating just above limit.
func combinations(slots []slot, limit int) int {
	total := 1
	for _, s := range slots {
		n := len(s.candidates)
		if n == 0 {
			continue
		}
		total *= n
		if total > limit {
			return limit + 1
		}
	}
	return total
}

func totalOf(items []cart.Item, agents []catalog.Agent) decimal.Decimal {
	return cart.CalculateTotal(cart.GroupByAgent(items, agents))
}
