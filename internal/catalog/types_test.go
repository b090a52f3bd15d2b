package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductOfferWellFormed(t *testing.T) {
	cases := []struct {
		name  string
		offer ProductOffer
		want  bool
	}{
		{"complete", ProductOffer{AgentID: "a", Price: Amount(10), ShipFee: Amount(0)}, true},
		{"missing price", ProductOffer{AgentID: "a", ShipFee: Amount(1)}, false},
		{"missing ship fee", ProductOffer{AgentID: "a", Price: Amount(1)}, false},
		{"negative price", ProductOffer{AgentID: "a", Price: Amount(-1), ShipFee: Amount(1)}, false},
		{"missing agent", ProductOffer{Price: Amount(1), ShipFee: Amount(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.offer.WellFormed(); got != tc.want {
				t.Fatalf("WellFormed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLandedCost(t *testing.T) {
	cost, ok := ProductOffer{AgentID: "a", Price: Amount(12.5), ShipFee: Amount(3.25)}.LandedCost()
	if !ok || !cost.Equal(decimal.RequireFromString("15.75")) {
		t.Fatalf("unexpected landed cost %s ok=%v", cost, ok)
	}
	if _, ok := (ProductOffer{AgentID: "a"}).LandedCost(); ok {
		t.Fatal("malformed offer should not have a landed cost")
	}
}

func TestDisplayPriceSkipsMalformedOffers(t *testing.T) {
	snap := fixtureSnapshot()
	if got := snap.Products[0].DisplayPrice(); !got.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected cheapest offer price 42, got %s", got)
	}
	if got := snap.Products[2].DisplayPrice(); !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected malformed offer to be skipped, got %s", got)
	}
	empty := Product{PriceGuide: PriceGuide{Min: decimal.NewFromInt(5)}}
	if got := empty.DisplayPrice(); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected price guide fallback, got %s", got)
	}
}

func TestOfferJSONUsesNumbersAndNulls(t *testing.T) {
	var offer ProductOffer
	if err := json.Unmarshal([]byte(`{"agentId":"a","price":19.99,"shipFee":null}`), &offer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !offer.Price.Valid || offer.ShipFee.Valid {
		t.Fatalf("expected price set and ship fee null, got %+v", offer)
	}
}
