package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Agent is a third-party purchasing intermediary that fulfils orders on the shopper's behalf.
type Agent struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Slug        string   `json:"slug"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	Badges      []string `json:"badges"`
	SpeedTag    string   `json:"speedTag"`
	Logo        string   `json:"logo"`
	SiteURL     string   `json:"siteUrl" validate:"omitempty,url"`
	PromoText   string   `json:"promoText,omitempty"`
	Recommended bool     `json:"recommended,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// PriceGuide is the observed price band for a product across agents.
type PriceGuide struct {
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
	Currency string          `json:"currency"`
}

// SKUOption is one variant axis of a product, e.g. Color with Black/White.
type SKUOption struct {
	Name   string   `json:"name" validate:"required"`
	Values []string `json:"values" validate:"min=1"`
}

// HasValue reports whether value is one of the option's enumerated values.
func (o SKUOption) HasValue(value string) bool {
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}

// ProductOffer is one agent's listing of a product. A null price or ship fee marks the
// listing as malformed.
type ProductOffer struct {
	AgentID  string              `json:"agentId" validate:"required"`
	Title    string              `json:"title,omitempty"`
	Price    decimal.NullDecimal `json:"price"`
	ShipFee  decimal.NullDecimal `json:"shipFee"`
	EstDays  int                 `json:"estDays" validate:"gte=0"`
	Currency string              `json:"currency"`
	Link     string              `json:"link" validate:"omitempty,url"`
	InStock  bool                `json:"inStock"`
}

// WellFormed reports whether the offer carries a usable non-negative price and ship fee.
func (o ProductOffer) WellFormed() bool {
	if o.AgentID == "" || !o.Price.Valid || !o.ShipFee.Valid {
		return false
	}
	return !o.Price.Decimal.IsNegative() && !o.ShipFee.Decimal.IsNegative()
}

// LandedCost is price plus shipping. ok is false for malformed offers.
func (o ProductOffer) LandedCost() (cost decimal.Decimal, ok bool) {
	if !o.WellFormed() {
		return decimal.Zero, false
	}
	return o.Price.Decimal.Add(o.ShipFee.Decimal), true
}

type Product struct {
	ID          string            `json:"id" validate:"required"`
	Slug        string            `json:"slug" validate:"required"`
	Title       string            `json:"title" validate:"required"`
	Brand       string            `json:"brand"`
	CategoryID  string            `json:"categoryId"`
	Cover       string            `json:"cover"`
	Gallery     []string          `json:"gallery"`
	PriceGuide  PriceGuide        `json:"priceGuide"`
	Tags        []string          `json:"tags"`
	Description string            `json:"description,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
	SKUOptions  []SKUOption       `json:"skuOptions,omitempty" validate:"dive"`
	CreatedAt   time.Time         `json:"createdAt"`
	Offers      []ProductOffer    `json:"offers" validate:"dive"`
}

// OfferFor returns the offer listed by agentID.
func (p Product) OfferFor(agentID string) (ProductOffer, bool) {
	for _, offer := range p.Offers {
		if offer.AgentID == agentID {
			return offer, true
		}
	}
	return ProductOffer{}, false
}

// SKUOption looks up a variant axis by name.
func (p Product) SKUOption(name string) (SKUOption, bool) {
	for _, opt := range p.SKUOptions {
		if opt.Name == name {
			return opt, true
		}
	}
	return SKUOption{}, false
}

// DisplayPrice is the cheapest well-formed offer price, falling back to the price guide minimum.
func (p Product) DisplayPrice() decimal.Decimal {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, offer := range p.Offers {
		if !offer.WellFormed() {
			continue
		}
		if !found || offer.Price.Decimal.LessThan(best) {
			best = offer.Price.Decimal
			found = true
		}
	}
	if found {
		return best
	}
	return p.PriceGuide.Min
}

// HasDisplayableCover filters out placeholder artwork left over from seeding.
func (p Product) HasDisplayableCover() bool {
	if p.Cover == "" {
		return false
	}
	return !strings.Contains(p.Cover, "/images/products/") && !strings.Contains(p.Cover, "example.com")
}

// Snapshot is a consistent read of the whole catalog.
type Snapshot struct {
	Agents     []Agent    `json:"agents"`
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}
