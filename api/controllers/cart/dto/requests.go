package cartdto

import cartsvc "github.com/xfinds/xfinds-backend/internal/cart"

// SKUChoice is one selected variant value.
type SKUChoice struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// AddItemRequest adds a product variant from one agent to the cart.
type AddItemRequest struct {
	ProductID string      `json:"productId" validate:"required,max=64"`
	AgentID   string      `json:"agentId" validate:"required,max=64"`
	SKU       []SKUChoice `json:"sku" validate:"omitempty,max=16,dive"`
	Quantity  int         `json:"quantity" validate:"gte=0,lte=99"`
}

// ToInput maps the request onto the cart service input.
func (r AddItemRequest) ToInput() cartsvc.AddItemInput {
	sku := make(cartsvc.SKUSelection, 0, len(r.SKU))
	for _, c := range r.SKU {
		sku = append(sku, cartsvc.SKUChoice{Name: c.Name, Value: c.Value})
	}
	return cartsvc.AddItemInput{
		ProductID: r.ProductID,
		AgentID:   r.AgentID,
		SKU:       sku,
		Quantity:  r.Quantity,
	}
}

// SwitchAgentRequest moves a cart line to another agent's offer.
type SwitchAgentRequest struct {
	AgentID string `json:"agentId" validate:"required,max=64"`
}

// RestoreRequest replaces the cart with a snapshot the client held on to, typically the
// previous cart returned by an applied optimization.
type RestoreRequest struct {
	Items []cartsvc.Item `json:"items" validate:"required"`
}
