package catalog

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/pkg/types"
)

// agentRecord is the SQL row for an Agent.
type agentRecord struct {
	ID          string         `gorm:"column:id;primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug"`
	Rating      float64        `gorm:"column:rating;not null;default:0"`
	Badges      pq.StringArray `gorm:"column:badges;type:text[]"`
	SpeedTag    string         `gorm:"column:speed_tag"`
	Logo        string         `gorm:"column:logo"`
	SiteURL     string         `gorm:"column:site_url"`
	PromoText   string         `gorm:"column:promo_text"`
	Recommended bool           `gorm:"column:recommended;not null;default:false"`
	Notes       string         `gorm:"column:notes"`
	Position    int            `gorm:"column:position;not null"`
}

func (agentRecord) TableName() string { return "agents" }

type categoryRecord struct {
	ID       string `gorm:"column:id;primaryKey"`
	Name     string `gorm:"column:name;not null"`
	Slug     string `gorm:"column:slug"`
	Icon     string `gorm:"column:icon"`
	Position int    `gorm:"column:position;not null"`
}

func (categoryRecord) TableName() string { return "categories" }

type productRecord struct {
	ID            string                              `gorm:"column:id;primaryKey"`
	Slug          string                              `gorm:"column:slug;not null"`
	Title         string                              `gorm:"column:title;not null"`
	Brand         string                              `gorm:"column:brand"`
	CategoryID    string                              `gorm:"column:category_id"`
	Cover         string                              `gorm:"column:cover"`
	Gallery       types.JSONColumn[[]string]          `gorm:"column:gallery;type:jsonb"`
	PriceMin      decimal.Decimal                     `gorm:"column:price_min;type:numeric(12,2)"`
	PriceMax      decimal.Decimal                     `gorm:"column:price_max;type:numeric(12,2)"`
	PriceCurrency string                              `gorm:"column:price_currency"`
	Tags          pq.StringArray                      `gorm:"column:tags;type:text[]"`
	Description   string                              `gorm:"column:description"`
	Specs         types.JSONColumn[map[string]string] `gorm:"column:specs;type:jsonb"`
	SKUOptions    types.JSONColumn[[]SKUOption]       `gorm:"column:sku_options;type:jsonb"`
	CreatedAt     time.Time                           `gorm:"column:created_at"`
	Position      int                                 `gorm:"column:position;not null"`
}

func (productRecord) TableName() string { return "products" }

type offerRecord struct {
	ProductID string              `gorm:"column:product_id;primaryKey"`
	AgentID   string              `gorm:"column:agent_id;primaryKey"`
	Position  int                 `gorm:"column:position;not null"`
	Title     string              `gorm:"column:title"`
	Price     decimal.NullDecimal `gorm:"column:price;type:numeric(12,2)"`
	ShipFee   decimal.NullDecimal `gorm:"column:ship_fee;type:numeric(12,2)"`
	EstDays   int                 `gorm:"column:est_days;not null;default:0"`
	Currency  string              `gorm:"column:currency"`
	Link      string              `gorm:"column:link"`
	InStock   bool                `gorm:"column:in_stock;not null;default:false"`
}

func (offerRecord) TableName() string { return "product_offers" }

func agentToRecord(a Agent, position int) agentRecord {
	return agentRecord{
		ID:          a.ID,
		Name:        a.Name,
		Slug:        a.Slug,
		Rating:      a.Rating,
		Badges:      pq.StringArray(a.Badges),
		SpeedTag:    a.SpeedTag,
		Logo:        a.Logo,
		SiteURL:     a.SiteURL,
		PromoText:   a.PromoText,
		Recommended: a.Recommended,
		Notes:       a.Notes,
		Position:    position,
	}
}

func (r agentRecord) toAgent() Agent {
	return Agent{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Rating:      r.Rating,
		Badges:      []string(r.Badges),
		SpeedTag:    r.SpeedTag,
		Logo:        r.Logo,
		SiteURL:     r.SiteURL,
		PromoText:   r.PromoText,
		Recommended: r.Recommended,
		Notes:       r.Notes,
	}
}

func categoryToRecord(c Category, position int) categoryRecord {
	return categoryRecord{ID: c.ID, Name: c.Name, Slug: c.Slug, Icon: c.Icon, Position: position}
}

func (r categoryRecord) toCategory() Category {
	return Category{ID: r.ID, Name: r.Name, Slug: r.Slug, Icon: r.Icon}
}

func productToRecords(p Product, position int) (productRecord, []offerRecord) {
	rec := productRecord{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Brand:         p.Brand,
		CategoryID:    p.CategoryID,
		Cover:         p.Cover,
		Gallery:       types.NewJSONColumn(p.Gallery),
		PriceMin:      p.PriceGuide.Min,
		PriceMax:      p.PriceGuide.Max,
		PriceCurrency: p.PriceGuide.Currency,
		Tags:          pq.StringArray(p.Tags),
		Description:   p.Description,
		Specs:         types.NewJSONColumn(p.Specs),
		SKUOptions:    types.NewJSONColumn(p.SKUOptions),
		CreatedAt:     p.CreatedAt,
		Position:      position,
	}
	offers := make([]offerRecord, 0, len(p.Offers))
	for i, o := range p.Offers {
		offers = append(offers, offerRecord{
			ProductID: p.ID,
			AgentID:   o.AgentID,
			Position:  i,
			Title:     o.Title,
			Price:     o.Price,
			ShipFee:   o.ShipFee,
			EstDays:   o.EstDays,
			Currency:  o.Currency,
			Link:      o.Link,
			InStock:   o.InStock,
		})
	}
	return rec, offers
}

func (r productRecord) toProduct(offers []offerRecord) Product {
	p := Product{
		ID:         r.ID,
		Slug:       r.Slug,
		Title:      r.Title,
		Brand:      r.Brand,
		CategoryID: r.CategoryID,
		Cover:      r.Cover,
		Gallery:    r.Gallery.Val,
		PriceGuide: PriceGuide{
			Min:      r.PriceMin,
			Max:      r.PriceMax,
			Currency: r.PriceCurrency,
		},
		Tags:        []string(r.Tags),
		Description: r.Description,
		Specs:       r.Specs.Val,
		SKUOptions:  r.SKUOptions.Val,
		CreatedAt:   r.CreatedAt,
		Offers:      make([]ProductOffer, 0, len(offers)),
	}
	for _, o := range offers {
		p.Offers = append(p.Offers, ProductOffer{
			AgentID:  o.AgentID,
			Title:    o.Title,
			Price:    o.Price,
			ShipFee:  o.ShipFee,
			EstDays:  o.EstDays,
			Currency: o.Currency,
			Link:     o.Link,
			InStock:  o.InStock,
		})
	}
	return p
}
