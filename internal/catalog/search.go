package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/xfinds/xfinds-backend/pkg/pagination"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPrice     SortOrder = "price"
	SortNew       SortOrder = "new"
)

// DefaultPageSize matches the storefront grid.
const DefaultPageSize = pagination.DefaultPageSize

// ParseSortOrder maps a query value onto a SortOrder, defaulting to relevance.
func ParseSortOrder(value string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case SortPrice:
		return SortPrice
	case SortNew:
		return SortNew
	default:
		return SortRelevance
	}
}

// SearchParams narrows and orders the product list. Zero values disable a filter.
type SearchParams struct {
	Query      string
	CategoryID string
	AgentID    string
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	Sort       SortOrder
	Page       int
	PageSize   int
}

type SearchResult struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

const (
	weightTitlePrefix = 3.0
	weightTitle       = 2.0
	weightBrand       = 2.0
	weightTag         = 1.5
	weightDescription = 0.5
)

type scoredProduct struct {
	product Product
	score   float64
	index   int
}

// Search filters, scores and paginates products. Every query token must match somewhere
// in the product for it to be returned.
func Search(products []Product, params SearchParams) SearchResult {
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}

	folder := newFolder()
	tokens := strings.Fields(folder.fold(params.Query))

	matches := make([]scoredProduct, 0, len(products))
	for i, p := range products {
		if !matchesFilters(p, params) {
			continue
		}
		score, ok := relevance(folder, p, tokens)
		if !ok {
			continue
		}
		matches = append(matches, scoredProduct{product: p, score: score, index: i})
	}

	sortMatches(matches, ParseSortOrder(string(params.Sort)), len(tokens) > 0)

	window := pagination.Resolve(pagination.Params{Page: params.Page, PageSize: params.PageSize}, len(matches))
	out := make([]Product, 0, window.End-window.Start)
	for _, m := range matches[window.Start:window.End] {
		out = append(out, m.product)
	}
	return SearchResult{
		Products:   out,
		Total:      len(matches),
		Page:       window.Page,
		PageSize:   window.PageSize,
		TotalPages: window.TotalPages,
	}
}

func matchesFilters(p Product, params SearchParams) bool {
	if params.CategoryID != "" && p.CategoryID != params.CategoryID {
		return false
	}
	if params.AgentID != "" {
		if _, ok := p.OfferFor(params.AgentID); !ok {
			return false
		}
	}
	price := p.DisplayPrice()
	if params.MinPrice.Valid && price.LessThan(params.MinPrice.Decimal) {
		return false
	}
	if params.MaxPrice.Valid && price.GreaterThan(params.MaxPrice.Decimal) {
		return false
	}
	return true
}

func relevance(f folder, p Product, tokens []string) (float64, bool) {
	if len(tokens) == 0 {
		return 0, true
	}
	title := f.fold(p.Title)
	brand := f.fold(p.Brand)
	description := f.fold(p.Description)
	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tags = append(tags, f.fold(tag))
	}

	var total float64
	for _, token := range tokens {
		var score float64
		switch {
		case hasWordPrefix(title, token):
			score += weightTitlePrefix
		case strings.Contains(title, token):
			score += weightTitle
		}
		if strings.Contains(brand, token) {
			score += weightBrand
		}
		for _, tag := range tags {
			if strings.Contains(tag, token) {
				score += weightTag
				break
			}
		}
		if strings.Contains(description, token) {
			score += weightDescription
		}
		if score == 0 {
			return 0, false
		}
		total += score
	}
	return total, true
}

func hasWordPrefix(text, token string) bool {
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, token) {
			return true
		}
	}
	return false
}

func sortMatches(matches []scoredProduct, order SortOrder, hasQuery bool) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch order {
		case SortPrice:
			pa, pb := a.product.DisplayPrice(), b.product.DisplayPrice()
			if !pa.Equal(pb) {
				return pa.LessThan(pb)
			}
		case SortNew:
			if !a.product.CreatedAt.Equal(b.product.CreatedAt) {
				return a.product.CreatedAt.After(b.product.CreatedAt)
			}
		default:
			if hasQuery && a.score != b.score {
				return a.score > b.score
			}
		}
		return a.index < b.index
	})
}

// folder lowercases and strips diacritics so "Café" matches "cafe".
type folder struct {
	caser cases.Caser
}

func newFolder() folder {
	return folder{caser: cases.Fold()}
}

func (f folder) fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		stripped = value
	}
	return f.caser.String(stripped)
}
