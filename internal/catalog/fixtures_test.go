package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

func fixtureSnapshot() Snapshot {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return Snapshot{
		Agents: []Agent{
			{ID: "cnfans", Name: "CNFans", Slug: "cnfans", Rating: 4.6, Recommended: true, SiteURL: "https://cnfans.com", Badges: []string{"fast"}},
			{ID: "mulebuy", Name: "Mulebuy", Slug: "mulebuy", Rating: 4.2, SiteURL: "https://mulebuy.com"},
			{ID: "acbuy", Name: "ACBuy", Slug: "acbuy", Rating: 3.9},
		},
		Categories: []Category{
			{ID: "shoes", Name: "Shoes", Slug: "shoes"},
			{ID: "jackets", Name: "Jackets", Slug: "jackets"},
			{ID: "bags", Name: "Bags", Slug: "bags"},
		},
		Products: []Product{
			{
				ID: "p-runner", Slug: "retro-runner", Title: "Retro Runner Sneaker", Brand: "Nike",
				CategoryID: "shoes", Cover: "https://cdn.xfinds.io/runner.jpg",
				PriceGuide: PriceGuide{Min: decimal.NewFromInt(40), Max: decimal.NewFromInt(60), Currency: "USD"},
				Tags:       []string{"sneaker", "running"},
				SKUOptions: []SKUOption{{Name: "Size", Values: []string{"42", "43"}}},
				CreatedAt:  base,
				Offers: []ProductOffer{
					{AgentID: "cnfans", Price: Amount(45), ShipFee: Amount(10), EstDays: 9, Link: "https://cnfans.com/p/1", InStock: true},
					{AgentID: "mulebuy", Price: Amount(42), ShipFee: Amount(12), EstDays: 12, Link: "https://mulebuy.com/p/1", InStock: true},
				},
			},
			{
				ID: "p-puffer", Slug: "down-puffer", Title: "Down Puffer Jacket", Brand: "Moncler",
				CategoryID: "jackets", Cover: "https://cdn.xfinds.io/puffer.jpg",
				PriceGuide:  PriceGuide{Min: decimal.NewFromInt(90), Max: decimal.NewFromInt(120), Currency: "USD"},
				Tags:        []string{"winter"},
				Description: "Warm café-style puffer for city runs",
				CreatedAt:   base.Add(48 * time.Hour),
				Offers: []ProductOffer{
					{AgentID: "acbuy", Price: Amount(95), ShipFee: Amount(20), EstDays: 14, Link: "https://acbuy.com/p/2", InStock: true},
				},
			},
			{
				ID: "p-trail", Slug: "trail-shoe", Title: "Trail Shoe", Brand: "Salomon",
				CategoryID: "shoes", Cover: "/images/products/placeholder.jpg",
				PriceGuide: PriceGuide{Min: decimal.NewFromInt(70), Max: decimal.NewFromInt(80), Currency: "USD"},
				CreatedAt:  base.Add(24 * time.Hour),
				Offers: []ProductOffer{
					{AgentID: "mulebuy", Price: Amount(75), ShipFee: Amount(8), EstDays: 10, Link: "https://mulebuy.com/p/3"},
					{AgentID: "cnfans", Price: decimal.NullDecimal{}, ShipFee: Amount(8), EstDays: 10},
				},
			},
		},
	}
}
