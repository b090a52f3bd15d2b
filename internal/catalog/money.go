package catalog

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching the catalog files.
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount builds a valid nullable amount from a float literal. Intended for fixtures and tooling.
func Amount(value float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(value))
}
