package optimizer

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/cart"
	"github.com/xfinds/xfinds-backend/internal/catalog"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func offer(agentID string, price, ship float64) catalog.ProductOffer {
	return catalog.ProductOffer{
		AgentID: agentID,
		Price:   catalog.Amount(price),
		ShipFee: catalog.Amount(ship),
		Link:    fmt.Sprintf("https://%s.example/item", agentID),
		InStock: true,
	}
}

func itemFor(productID string, o catalog.ProductOffer) cart.Item {
	return cart.Item{
		ProductID: productID,
		OfferID:   cart.OfferID(productID, o.AgentID, nil),
		AgentID:   o.AgentID,
		Price:     o.Price.Decimal,
		ShipFee:   o.ShipFee.Decimal,
		Link:      o.Link,
		Quantity:  1,
	}
}

var testAgents = []catalog.Agent{{ID: "A", Name: "Agent A"}, {ID: "B", Name: "Agent B"}}

func TestOptimizeEmptyCart(t *testing.T) {
	got := OptimizeCartItems(nil, testAgents, nil)
	if got.OptimizedItems == nil || len(got.OptimizedItems) != 0 {
		t.Fatalf("expected empty optimized items, got %#v", got.OptimizedItems)
	}
	if got.Changes == nil || len(got.Changes) != 0 {
		t.Fatalf("expected empty changes, got %#v", got.Changes)
	}
	if !got.Savings.IsZero() {
		t.Fatalf("expected zero savings, got %s", got.Savings)
	}
}

func TestOptimizeSwitchesToCheaperAgent(t *testing.T) {
	offerA := offer("A", 100, 20)
	offerB := offer("B", 90, 15)
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offerA, offerB}}}
	items := []cart.Item{itemFor("p1", offerA)}

	got := OptimizeCartItems(items, testAgents, products)
	if !got.Savings.Equal(dec(15)) {
		t.Fatalf("expected savings 15, got %s", got.Savings)
	}
	if len(got.Changes) != 1 || got.Changes[0] != (cart.Change{OfferID: items[0].OfferID, FromAgentID: "A", ToAgentID: "B"}) {
		t.Fatalf("unexpected changes %+v", got.Changes)
	}
	moved := got.OptimizedItems[0]
	if moved.AgentID != "B" || !moved.Price.Equal(dec(90)) || !moved.ShipFee.Equal(dec(15)) || moved.Link != offerB.Link {
		t.Fatalf("optimized item must carry the new offer snapshot, got %+v", moved)
	}
	if moved.OfferID != cart.OfferID("p1", "B", nil) {
		t.Fatalf("offer id must name the new agent, got %s", moved.OfferID)
	}
	if items[0].AgentID != "A" {
		t.Fatal("input cart was mutated")
	}
	if got.Strategy != cart.StrategyBruteForce {
		t.Fatalf("expected brute force strategy, got %s", got.Strategy)
	}
}

func TestOptimizeUnknownProductPassesThrough(t *testing.T) {
	offerA := offer("A", 100, 20)
	offerB := offer("B", 90, 15)
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offerA, offerB}}}
	orphan := itemFor("deleted", offer("A", 10, 1))
	items := []cart.Item{orphan, itemFor("p1", offerA)}

	got := OptimizeCartItems(items, testAgents, products)
	if mustJSON(t, got.OptimizedItems[0]) != mustJSON(t, orphan) {
		t.Fatalf("orphan item must be unchanged, got %+v", got.OptimizedItems[0])
	}
	for _, ch := range got.Changes {
		if ch.OfferID == orphan.OfferID {
			t.Fatalf("orphan item must not appear in changes: %+v", got.Changes)
		}
	}
	if len(got.Changes) != 1 || got.Changes[0].ToAgentID != "B" {
		t.Fatalf("remaining items should still be optimized, got %+v", got.Changes)
	}
}

func TestOptimizeAllPinnedIsNoop(t *testing.T) {
	items := []cart.Item{itemFor("ghost", offer("A", 10, 1))}
	got := OptimizeCartItems(items, testAgents, []catalog.Product{{ID: "empty"}})
	if got.Strategy != cart.StrategyNone || len(got.Changes) != 0 || !got.Savings.IsZero() {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestBruteForceMatchesExhaustiveSearch(t *testing.T) {
	// Grouping makes this non-additive: shipping consolidates per agent, so the cheapest
	// per-line choice is not the cheapest cart.
	products := []catalog.Product{
		{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 10, 10), offer("B", 12, 3)}},
		{ID: "p2", Offers: []catalog.ProductOffer{offer("A", 20, 10), offer("B", 19, 12)}},
		{ID: "p3", Offers: []catalog.ProductOffer{offer("A", 30, 10), offer("B", 33, 2)}},
	}
	items := []cart.Item{
		itemFor("p1", products[0].Offers[0]),
		itemFor("p2", products[1].Offers[1]),
		itemFor("p3", products[2].Offers[0]),
	}

	got := OptimizeCartItems(items, testAgents, products)
	optimizedTotal := cart.CalculateTotal(cart.GroupByAgent(got.OptimizedItems, testAgents))

	evaluated := 0
	for mask := 0; mask < 8; mask++ {
		assignment := make([]cart.Item, 3)
		for i := range items {
			o := products[i].Offers[(mask>>i)&1]
			assignment[i] = items[i].Reassign(o.AgentID, o.Price.Decimal, o.ShipFee.Decimal, o.Link)
		}
		total := cart.CalculateTotal(cart.GroupByAgent(assignment, testAgents))
		if optimizedTotal.GreaterThan(total) {
			t.Fatalf("assignment %03b costs %s, cheaper than optimized %s", mask, total, optimizedTotal)
		}
		evaluated++
	}
	if evaluated != 8 {
		t.Fatalf("expected 8 assignments, evaluated %d", evaluated)
	}
	if !got.OptimizedTotal.Equal(optimizedTotal) {
		t.Fatalf("reported optimized total %s differs from regrouped %s", got.OptimizedTotal, optimizedTotal)
	}
	current := cart.CalculateTotal(cart.GroupByAgent(items, testAgents))
	if !got.Savings.Equal(current.Sub(optimizedTotal)) {
		t.Fatalf("savings %s should equal %s - %s", got.Savings, current, optimizedTotal)
	}
}

func TestBruteForcePrefersFewestChangesOnTies(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 10, 5), offer("B", 10, 5)}},
	}
	items := []cart.Item{itemFor("p1", products[0].Offers[1])}
	got := OptimizeCartItems(items, testAgents, products)
	if len(got.Changes) != 0 || got.OptimizedItems[0].AgentID != "B" {
		t.Fatalf("equal-cost alternatives must not churn the cart, got %+v", got)
	}
}

func TestSavingsNeverNegative(t *testing.T) {
	// The stored snapshot is cheaper than anything the catalog now lists.
	products := []catalog.Product{
		{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 50, 10), offer("B", 55, 10)}},
	}
	stale := itemFor("p1", offer("A", 5, 1))
	for _, opts := range []Options{{}, {BruteForceLimit: -1}} {
		got := New(opts, nil).Optimize([]cart.Item{stale}, testAgents, products)
		if got.Savings.IsNegative() {
			t.Fatalf("savings must be clamped, got %s", got.Savings)
		}
		if !got.OptimizedItems[0].Price.Equal(dec(50)) {
			t.Fatalf("current agent snapshot should be refreshed, got %s", got.OptimizedItems[0].Price)
		}
	}
}

func TestMalformedOffersAreIgnored(t *testing.T) {
	broken := catalog.ProductOffer{AgentID: "B", ShipFee: catalog.Amount(0)}
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 20, 5), broken}}}
	items := []cart.Item{itemFor("p1", products[0].Offers[0])}
	got := OptimizeCartItems(items, testAgents, products)
	if len(got.Changes) != 0 {
		t.Fatalf("malformed offers must never be chosen, got %+v", got.Changes)
	}
}

func TestCurrentListingRemovedMovesToCatalogOffer(t *testing.T) {
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offer("B", 80, 20)}}}
	items := []cart.Item{itemFor("p1", offer("A", 40, 5))}
	for _, opts := range []Options{{}, {BruteForceLimit: -1}} {
		got := New(opts, nil).Optimize(items, testAgents, products)
		line := got.OptimizedItems[0]
		if line.AgentID != "B" || !line.Price.Equal(dec(80)) || !line.ShipFee.Equal(dec(20)) || line.Link != "https://B.example/item" {
			t.Fatalf("line must carry the B offer snapshot, got %+v", line)
		}
		if len(got.Changes) != 1 || got.Changes[0].FromAgentID != "A" || got.Changes[0].ToAgentID != "B" {
			t.Fatalf("expected an A to B change, got %+v", got.Changes)
		}
		if !got.Savings.IsZero() {
			t.Fatalf("pricier replacement must clamp savings to 0, got %s", got.Savings)
		}
	}
}

func TestMalformedCurrentListingMovesInGreedyMode(t *testing.T) {
	broken := catalog.ProductOffer{AgentID: "A", ShipFee: catalog.Amount(5)}
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{broken, offer("B", 60, 5)}}}
	items := []cart.Item{itemFor("p1", offer("A", 40, 5))}
	got := New(Options{BruteForceLimit: -1}, nil).Optimize(items, testAgents, products)
	if got.OptimizedItems[0].AgentID != "B" || !got.OptimizedItems[0].Price.Equal(dec(60)) {
		t.Fatalf("expected the line to move to B, got %+v", got.OptimizedItems[0])
	}
	if len(got.Changes) != 1 {
		t.Fatalf("expected one change, got %+v", got.Changes)
	}
}

func TestGreedyWeighsQuantity(t *testing.T) {
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 10, 0), offer("B", 8, 5)}}}
	line := itemFor("p1", products[0].Offers[0])
	line.Quantity = 5
	got := New(Options{BruteForceLimit: -1}, nil).Optimize([]cart.Item{line}, testAgents, products)
	// A: 5*10 + 0 = 50, B: 5*8 + 5 = 45
	if got.OptimizedItems[0].AgentID != "B" {
		t.Fatalf("expected B for five units, got %s", got.OptimizedItems[0].AgentID)
	}
	if !got.Savings.Equal(dec(5)) {
		t.Fatalf("expected savings 5, got %s", got.Savings)
	}

	line.Quantity = 1
	got = New(Options{BruteForceLimit: -1}, nil).Optimize([]cart.Item{line}, testAgents, products)
	if got.OptimizedItems[0].AgentID != "A" {
		t.Fatalf("expected A for one unit, got %s", got.OptimizedItems[0].AgentID)
	}
}

func TestGreedyAboveThreshold(t *testing.T) {
	var (
		products []catalog.Product
		items    []cart.Item
	)
	for i := 0; i < DefaultBruteForceLimit+1; i++ {
		id := fmt.Sprintf("p%d", i)
		products = append(products, catalog.Product{ID: id, Offers: []catalog.ProductOffer{offer("A", 20, 5), offer("B", 18, 4)}})
		items = append(items, itemFor(id, products[i].Offers[0]))
	}
	got := OptimizeCartItems(items, testAgents, products)
	if got.Strategy != cart.StrategyGreedy {
		t.Fatalf("expected greedy strategy, got %s", got.Strategy)
	}
	if len(got.Changes) != len(items) {
		t.Fatalf("expected every line to move to B, got %d changes", len(got.Changes))
	}
	// A: 7*20 + 5 = 145, B: 7*18 + 4 = 130
	if !got.Savings.Equal(dec(15)) {
		t.Fatalf("expected savings 15, got %s", got.Savings)
	}
}

func TestGreedyTieKeepsCurrentAgent(t *testing.T) {
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 10, 5), offer("B", 12, 3)}}}
	items := []cart.Item{itemFor("p1", products[0].Offers[1])}
	got := New(Options{BruteForceLimit: -1}, nil).Optimize(items, testAgents, products)
	if got.Strategy != cart.StrategyGreedy || len(got.Changes) != 0 {
		t.Fatalf("tie should keep agent B, got %+v", got)
	}
}

func TestMaxCombinationsFallsBackToGreedy(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 10, 5), offer("B", 9, 5)}},
		{ID: "p2", Offers: []catalog.ProductOffer{offer("A", 10, 5), offer("B", 9, 5)}},
	}
	items := []cart.Item{itemFor("p1", products[0].Offers[0]), itemFor("p2", products[1].Offers[0])}
	got := New(Options{MaxCombinations: 3}, nil).Optimize(items, testAgents, products)
	if got.Strategy != cart.StrategyGreedy {
		t.Fatalf("expected greedy fallback, got %s", got.Strategy)
	}
}

func TestInStockOnlySkipsUnavailableOffers(t *testing.T) {
	cheapButGone := offer("B", 1, 1)
	cheapButGone.InStock = false
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offer("A", 10, 5), cheapButGone}}}
	items := []cart.Item{itemFor("p1", products[0].Offers[0])}

	if got := New(Options{InStockOnly: true}, nil).Optimize(items, testAgents, products); len(got.Changes) != 0 {
		t.Fatalf("out of stock offer should be skipped, got %+v", got.Changes)
	}
	if got := New(Options{}, nil).Optimize(items, testAgents, products); len(got.Changes) != 1 {
		t.Fatalf("default options consider every offer, got %+v", got.Changes)
	}
}

type recordingObserver struct {
	strategy string
	savings  float64
	changes  int
}

func (r *recordingObserver) ObserveRun(strategy string, _ time.Duration, savings float64, changes int) {
	r.strategy, r.savings, r.changes = strategy, savings, changes
}

func TestEngineReportsRuns(t *testing.T) {
	obs := &recordingObserver{}
	offerA := offer("A", 100, 20)
	products := []catalog.Product{{ID: "p1", Offers: []catalog.ProductOffer{offerA, offer("B", 90, 15)}}}
	New(Options{}, obs).Optimize([]cart.Item{itemFor("p1", offerA)}, testAgents, products)
	if obs.strategy != string(cart.StrategyBruteForce) || obs.savings != 15 || obs.changes != 1 {
		t.Fatalf("unexpected observation %+v", obs)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	buf, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(buf)
}
