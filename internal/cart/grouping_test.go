package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/catalog"
)

func line(offerID, agentID string, price, ship int64) Item {
	return Item{
		ProductID: offerID,
		OfferID:   offerID,
		AgentID:   agentID,
		Price:     decimal.NewFromInt(price),
		ShipFee:   decimal.NewFromInt(ship),
		Quantity:  1,
	}
}

var groupingAgents = []catalog.Agent{{ID: "a", Name: "Agent A"}, {ID: "b", Name: "Agent B"}}

func TestGroupByAgentEmpty(t *testing.T) {
	groups := GroupByAgent(nil, groupingAgents)
	if groups == nil || len(groups) != 0 {
		t.Fatalf("expected empty non-nil groups, got %#v", groups)
	}
	if !CalculateTotal(groups).IsZero() {
		t.Fatal("empty cart total should be zero")
	}
}

func TestGroupByAgentPartitionsInFirstSeenOrder(t *testing.T) {
	items := []Item{line("1", "b", 10, 5), line("2", "a", 20, 7), line("3", "b", 30, 9), line("4", "ghost", 5, 1)}
	groups := GroupByAgent(items, groupingAgents)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	order := []string{groups[0].AgentID, groups[1].AgentID, groups[2].AgentID}
	if order[0] != "b" || order[1] != "a" || order[2] != "ghost" {
		t.Fatalf("unexpected group order %v", order)
	}
	if groups[2].Agent != nil {
		t.Fatalf("unknown agent should resolve to nil, got %+v", groups[2].Agent)
	}
	if groups[0].Agent == nil || groups[0].Agent.Name != "Agent B" {
		t.Fatalf("agent b not resolved: %+v", groups[0].Agent)
	}

	seen := 0
	for _, g := range groups {
		sum := decimal.Zero
		for _, it := range g.Items {
			if it.AgentID != g.AgentID {
				t.Fatalf("item %s landed in group %s", it.OfferID, g.AgentID)
			}
			sum = sum.Add(it.LineTotal())
			seen++
		}
		if !g.Subtotal.Equal(sum) {
			t.Fatalf("group %s subtotal %s, expected %s", g.AgentID, g.Subtotal, sum)
		}
	}
	if seen != len(items) {
		t.Fatalf("groups hold %d items, expected %d", seen, len(items))
	}

	b := groups[0]
	if !b.ShippingMin.Equal(decimal.NewFromInt(5)) || !b.ShippingMax.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("unexpected shipping range %s-%s", b.ShippingMin, b.ShippingMax)
	}
	if !b.Total.Equal(decimal.NewFromInt(49)) {
		t.Fatalf("expected group total 49, got %s", b.Total)
	}
}

func TestCalculateTotalBounds(t *testing.T) {
	items := []Item{line("1", "a", 10, 5), line("2", "b", 20, 3), line("3", "a", 7, 2)}
	total := CalculateTotal(GroupByAgent(items, groupingAgents))
	prices := decimal.Zero
	for _, it := range items {
		prices = prices.Add(it.LineTotal())
	}
	if total.LessThan(prices) {
		t.Fatalf("total %s below item prices %s", total, prices)
	}

	free := []Item{line("1", "a", 10, 0), line("2", "b", 20, 0)}
	if got := CalculateTotal(GroupByAgent(free, groupingAgents)); !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("zero shipping should total item prices, got %s", got)
	}
}

func TestGroupUsesQuantity(t *testing.T) {
	it := line("1", "a", 10, 4)
	it.Quantity = 3
	groups := GroupByAgent([]Item{it}, groupingAgents)
	if !groups[0].Subtotal.Equal(decimal.NewFromInt(30)) || !groups[0].Total.Equal(decimal.NewFromInt(34)) {
		t.Fatalf("unexpected totals %s / %s", groups[0].Subtotal, groups[0].Total)
	}
}

func TestSubtotalsSumLineTotals(t *testing.T) {
	a := line("1", "a", 10, 4)
	a.Quantity = 3
	b := line("2", "b", 7, 2)
	b.Quantity = 2
	c := line("3", "a", 5, 6)
	items := []Item{a, b, c}

	subtotals, unitPrices, lineTotals := decimal.Zero, decimal.Zero, decimal.Zero
	for _, g := range GroupByAgent(items, groupingAgents) {
		subtotals = subtotals.Add(g.Subtotal)
	}
	for _, it := range items {
		unitPrices = unitPrices.Add(it.Price)
		lineTotals = lineTotals.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Units()))))
	}
	if !subtotals.Equal(lineTotals) || !subtotals.Equal(decimal.NewFromInt(49)) {
		t.Fatalf("subtotals %s must equal price times units %s", subtotals, lineTotals)
	}
	if subtotals.Equal(unitPrices) {
		t.Fatalf("multi-unit lines must not be counted once")
	}
}

func TestSummarizeCountsUnits(t *testing.T) {
	a := line("1", "a", 10, 4)
	a.Quantity = 2
	summary := Summarize([]Item{a, line("2", "b", 5, 1)}, groupingAgents)
	if summary.Count != 3 || len(summary.Groups) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !summary.Total.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected total 30, got %s", summary.Total)
	}
	if empty := Summarize(nil, groupingAgents); empty.Items == nil || empty.Groups == nil {
		t.Fatalf("empty summary should not expose nil slices: %+v", empty)
	}
}
