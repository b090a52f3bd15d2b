package catalog

import "sort"

// DefaultFeaturedLimit is the number of products on the landing page.
const DefaultFeaturedLimit = 6

const categorySampleSize = 2

// CategorySummary is a category tile: how many products it holds plus a couple of samples.
type CategorySummary struct {
	Category
	ProductCount int       `json:"productCount"`
	Samples      []Product `json:"samples"`
}

// Featured returns the newest products first, capped at limit.
func Featured(products []Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ByCategory keeps catalog order.
func ByCategory(products []Product, categoryID string) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// CategoriesWithProducts summarises categories that have at least one product with real
// artwork, busiest category first.
func CategoriesWithProducts(categories []Category, products []Product) []CategorySummary {
	summaries := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		summary := CategorySummary{Category: c, Samples: make([]Product, 0, categorySampleSize)}
		for _, p := range products {
			if p.CategoryID != c.ID || !p.HasDisplayableCover() {
				continue
			}
			summary.ProductCount++
			if len(summary.Samples) < categorySampleSize {
				summary.Samples = append(summary.Samples, p)
			}
		}
		if summary.ProductCount == 0 {
			continue
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ProductCount > summaries[j].ProductCount
	})
	return summaries
}
