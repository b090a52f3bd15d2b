package cart

import "github.com/shopspring/decimal"

// Strategy names the search used to produce an OptimizationResult.
type Strategy string

const (
	StrategyNone       Strategy = "none"
	StrategyBruteForce Strategy = "brute_force"
	StrategyGreedy     Strategy = "greedy"
)

// Change records a line moved from one agent to another.
type Change struct {
	OfferID     string `json:"offerId"`
	FromAgentID string `json:"fromAgentId"`
	ToAgentID   string `json:"toAgentId"`
}

// OptimizationResult is a proposed reassignment of a cart. OptimizedItems carry refreshed
// offer snapshots; Changes lists only lines whose agent moved.
type OptimizationResult struct {
	OptimizedItems []Item          `json:"optimizedItems"`
	Savings        decimal.Decimal `json:"savings"`
	Changes        []Change        `json:"changes"`
	Strategy       Strategy        `json:"strategy"`
	CurrentTotal   decimal.Decimal `json:"currentTotal"`
	OptimizedTotal decimal.Decimal `json:"optimizedTotal"`
}
