package catalog

import "testing"

func TestFeaturedNewestFirst(t *testing.T) {
	products := fixtureSnapshot().Products
	if got := ids(Featured(products, 2)); !equalIDs(got, []string{"p-puffer", "p-trail"}) {
		t.Fatalf("unexpected featured %v", got)
	}
	if got := Featured(products, 0); len(got) != 3 {
		t.Fatalf("default limit should cover the fixture, got %d", len(got))
	}
	if products[0].ID != "p-runner" {
		t.Fatal("Featured must not reorder its input")
	}
}

func TestByCategory(t *testing.T) {
	products := fixtureSnapshot().Products
	if got := ids(ByCategory(products, "shoes")); !equalIDs(got, []string{"p-runner", "p-trail"}) {
		t.Fatalf("unexpected shoes %v", got)
	}
	if got := ByCategory(products, "hats"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCategoriesWithProductsSkipsPlaceholders(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Products = append(snap.Products, Product{ID: "p-parka", Slug: "parka", Title: "Parka", CategoryID: "jackets", Cover: "https://cdn.xfinds.io/parka.jpg"})
	snap.Products = append(snap.Products, Product{ID: "p-shell", Slug: "shell", Title: "Shell", CategoryID: "jackets", Cover: "https://cdn.xfinds.io/shell.jpg"})

	got := CategoriesWithProducts(snap.Categories, snap.Products)
	if len(got) != 2 {
		t.Fatalf("expected bags to be dropped, got %d summaries", len(got))
	}
	if got[0].ID != "jackets" || got[0].ProductCount != 3 || len(got[0].Samples) != 2 {
		t.Fatalf("unexpected first summary %+v", got[0])
	}
	// The trail shoe has a placeholder cover and must not be counted.
	if got[1].ID != "shoes" || got[1].ProductCount != 1 {
		t.Fatalf("unexpected shoes summary %+v", got[1])
	}
}
