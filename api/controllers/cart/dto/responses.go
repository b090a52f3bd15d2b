package cartdto

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/xfinds/xfinds-backend/internal/cart"
)

// Cart is the cart read returned by every cart mutation.
type Cart struct {
	SessionID string               `json:"sessionId"`
	Items     []cartsvc.Item       `json:"items"`
	Groups    []cartsvc.AgentGroup `json:"groups"`
	Total     decimal.Decimal      `json:"total"`
	Count     int                  `json:"count"`
}

func NewCart(sessionID string, summary cartsvc.Summary) Cart {
	items := summary.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	groups := summary.Groups
	if groups == nil {
		groups = []cartsvc.AgentGroup{}
	}
	return Cart{
		SessionID: sessionID,
		Items:     items,
		Groups:    groups,
		Total:     summary.Total,
		Count:     summary.Count,
	}
}

// AppliedOptimization pairs the applied result with the updated cart and the snapshot the
// client can send back to undo it.
type AppliedOptimization struct {
	Result   cartsvc.OptimizationResult `json:"result"`
	Cart     Cart                       `json:"cart"`
	Previous []cartsvc.Item             `json:"previous"`
}

func NewAppliedOptimization(sessionID string, applied cartsvc.ApplyResult) AppliedOptimization {
	previous := applied.Previous
	if previous == nil {
		previous = []cartsvc.Item{}
	}
	return AppliedOptimization{
		Result:   applied.Result,
		Cart:     NewCart(sessionID, applied.Cart),
		Previous: previous,
	}
}

// Checkout lists one redirect bundle per agent.
type Checkout struct {
	Groups []cartsvc.CheckoutGroup `json:"groups"`
}
