package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchWithoutQueryKeepsCatalogOrder(t *testing.T) {
	res := Search(fixtureSnapshot().Products, SearchParams{})
	if got := ids(res.Products); !equalIDs(got, []string{"p-runner", "p-puffer", "p-trail"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if res.Total != 3 || res.Page != 1 || res.PageSize != DefaultPageSize || res.TotalPages != 1 {
		t.Fatalf("unexpected paging %+v", res)
	}
}

func TestSearchRequiresEveryToken(t *testing.T) {
	products := fixtureSnapshot().Products
	res := Search(products, SearchParams{Query: "retro sneaker"})
	if got := ids(res.Products); !equalIDs(got, []string{"p-runner"}) {
		t.Fatalf("expected only the runner, got %v", got)
	}
	res = Search(products, SearchParams{Query: "retro jacket"})
	if res.Total != 0 {
		t.Fatalf("expected no match, got %v", ids(res.Products))
	}
}

func TestSearchRanksTitleAboveDescription(t *testing.T) {
	// "run" is a word prefix of the runner title and appears in the puffer description.
	res := Search(fixtureSnapshot().Products, SearchParams{Query: "run"})
	if got := ids(res.Products); !equalIDs(got, []string{"p-runner", "p-puffer"}) {
		t.Fatalf("unexpected relevance order %v", got)
	}
}

func TestSearchFoldsCaseAndDiacritics(t *testing.T) {
	res := Search(fixtureSnapshot().Products, SearchParams{Query: "CAFE"})
	if got := ids(res.Products); !equalIDs(got, []string{"p-puffer"}) {
		t.Fatalf("expected diacritic-insensitive match, got %v", got)
	}
	if got := newFolder().fold("  Ÿves Café "); got != "yves cafe" {
		t.Fatalf("unexpected fold %q", got)
	}
}

func TestSearchFilters(t *testing.T) {
	products := fixtureSnapshot().Products

	if got := ids(Search(products, SearchParams{CategoryID: "shoes"}).Products); !equalIDs(got, []string{"p-runner", "p-trail"}) {
		t.Fatalf("category filter: %v", got)
	}
	if got := ids(Search(products, SearchParams{AgentID: "acbuy"}).Products); !equalIDs(got, []string{"p-puffer"}) {
		t.Fatalf("agent filter: %v", got)
	}
	priced := Search(products, SearchParams{
		MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(90)),
	})
	if got := ids(priced.Products); !equalIDs(got, []string{"p-trail"}) {
		t.Fatalf("price filter: %v", got)
	}
}

func TestSearchSortOrders(t *testing.T) {
	products := fixtureSnapshot().Products
	if got := ids(Search(products, SearchParams{Sort: SortPrice}).Products); !equalIDs(got, []string{"p-runner", "p-trail", "p-puffer"}) {
		t.Fatalf("price sort: %v", got)
	}
	if got := ids(Search(products, SearchParams{Sort: SortNew}).Products); !equalIDs(got, []string{"p-puffer", "p-trail", "p-runner"}) {
		t.Fatalf("new sort: %v", got)
	}
	if ParseSortOrder(" PRICE ") != SortPrice || ParseSortOrder("bogus") != SortRelevance {
		t.Fatal("unexpected sort parsing")
	}
}

func TestSearchPagination(t *testing.T) {
	products := fixtureSnapshot().Products
	res := Search(products, SearchParams{Page: 2, PageSize: 2})
	if got := ids(res.Products); !equalIDs(got, []string{"p-trail"}) {
		t.Fatalf("page 2: %v", got)
	}
	if res.TotalPages != 2 || res.Total != 3 {
		t.Fatalf("unexpected paging %+v", res)
	}
	past := Search(products, SearchParams{Page: 5, PageSize: 2})
	if len(past.Products) != 0 || past.Products == nil {
		t.Fatalf("expected empty non-nil page, got %#v", past.Products)
	}
}
