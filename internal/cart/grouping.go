package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/catalog"
)

// AgentGroup is the derived view of the lines assigned to one agent.
type AgentGroup struct {
	AgentID string         `json:"agentId"`
	Agent   *catalog.Agent `json:"agent"`
	Items   []Item         `json:"items"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingMin decimal.Decimal `json:"shippingMin"`
	ShippingMax decimal.Decimal `json:"shippingMax"`
	Total       decimal.Decimal `json:"total"`
}

// GroupByAgent partitions items by agent in first-seen order. Shipping is reported as the
// range of single-item fees in the group, assuming same-agent parcels consolidate; the
// group total uses the top of that range.
func GroupByAgent(items []Item, agents []catalog.Agent) []AgentGroup {
	groups := make([]AgentGroup, 0)
	if len(items) == 0 {
		return groups
	}

	index := catalog.IndexAgents(agents)
	position := make(map[string]int, len(items))
	for _, item := range items {
		pos, ok := position[item.AgentID]
		if !ok {
			pos = len(groups)
			position[item.AgentID] = pos
			groups = append(groups, AgentGroup{
				AgentID:     item.AgentID,
				Agent:       index.Lookup(item.AgentID),
				Items:       make([]Item, 0, 1),
				ShippingMin: item.ShipFee,
				ShippingMax: item.ShipFee,
			})
		}
		g := &groups[pos]
		g.Items = append(g.Items, item)
		g.Subtotal = g.Subtotal.Add(item.LineTotal())
		if item.ShipFee.LessThan(g.ShippingMin) {
			g.ShippingMin = item.ShipFee
		}
		if item.ShipFee.GreaterThan(g.ShippingMax) {
			g.ShippingMax = item.ShipFee
		}
	}
	for i := range groups {
		groups[i].Total = groups[i].Subtotal.Add(groups[i].ShippingMax)
	}
	return groups
}

// CalculateTotal sums group totals.
func CalculateTotal(groups []AgentGroup) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total)
	}
	return total
}

// Summary is a cart read: the lines, their grouping and the grand total.
type Summary struct {
	Items  []Item          `json:"items"`
	Groups []AgentGroup    `json:"groups"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

// Summarize groups items and totals them.
func Summarize(items []Item, agents []catalog.Agent) Summary {
	if items == nil {
		items = []Item{}
	}
	groups := GroupByAgent(items, agents)
	count := 0
	for _, it := range items {
		count += it.Units()
	}
	return Summary{
		Items:  items,
		Groups: groups,
		Total:  CalculateTotal(groups),
		Count:  count,
	}
}
