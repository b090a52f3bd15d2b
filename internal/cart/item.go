// Package cart holds shopper cart state, per-agent grouping and the operations the
// storefront performs on a cart.
package cart

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SKUChoice is one selected variant value, e.g. Color=Black.
type SKUChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SKUSelection is an ordered list of variant choices. Order is presentation only;
// equality and identifiers use Canonical.
type SKUSelection []SKUChoice

// Map returns the selection keyed by option name. Later duplicates win.
func (s SKUSelection) Map() map[string]string {
	out := make(map[string]string, len(s))
	for _, c := range s {
		out[c.Name] = c.Value
	}
	return out
}

// Canonical serialises the selection as JSON with keys sorted, "{}" when empty.
func (s SKUSelection) Canonical() string {
	if len(s) == 0 {
		return "{}"
	}
	// encoding/json writes map keys in sorted order.
	buf, err := json.Marshal(s.Map())
	if err != nil {
		return "{}"
	}
	return string(buf)
}

// Equal compares selections by canonical form.
func (s SKUSelection) Equal(other SKUSelection) bool {
	return s.Canonical() == other.Canonical()
}

// Sorted returns a copy ordered by option name.
func (s SKUSelection) Sorted() SKUSelection {
	m := s.Map()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(SKUSelection, 0, len(names))
	for _, name := range names {
		out = append(out, SKUChoice{Name: name, Value: m[name]})
	}
	return out
}

// OfferID builds the synthetic line identifier for a product, agent and variant.
func OfferID(productID, agentID string, sku SKUSelection) string {
	return strings.Join([]string{productID, agentID, sku.Canonical()}, "-")
}

// Item is one cart line. Price, ShipFee and Link are a snapshot of the assigned agent's
// offer and must always change together with AgentID.
type Item struct {
	ProductID string          `json:"productId"`
	OfferID   string          `json:"offerId"`
	AgentID   string          `json:"agentId"`
	Price     decimal.Decimal `json:"price"`
	ShipFee   decimal.Decimal `json:"shipFee"`
	Link      string          `json:"link"`
	SKU       SKUSelection    `json:"sku,omitempty"`
	Weight    *float64        `json:"weight,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Units is the effective quantity; anything below one counts as a single unit.
func (i Item) Units() int {
	if i.Quantity < 1 {
		return 1
	}
	return i.Quantity
}

// LineTotal is price times units, shipping excluded.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Units())))
}

// LineKey identifies the distinct product, agent and variant a line stands for. Two lines
// with the same key are the same cart entry.
func (i Item) LineKey() string {
	return OfferID(i.ProductID, i.AgentID, i.SKU)
}

// Reassign returns a copy of the item moved to another agent's offer. The offer id is
// rebuilt so it keeps naming the line's product, agent and variant.
func (i Item) Reassign(agentID string, price, shipFee decimal.Decimal, link string) Item {
	i.AgentID = agentID
	i.OfferID = OfferID(i.ProductID, agentID, i.SKU)
	i.Price = price
	i.ShipFee = shipFee
	i.Link = link
	return i
}

// CloneItems copies a slice of items, including SKU slices and weight pointers.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for idx, it := range items {
		if it.SKU != nil {
			it.SKU = append(SKUSelection(nil), it.SKU...)
		}
		if it.Weight != nil {
			w := *it.Weight
			it.Weight = &w
		}
		out[idx] = it
	}
	return out
}
