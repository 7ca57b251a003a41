package types

import (
	"testing"
	"time"
)

func TestParseRecipeSortOrder(t *testing.T) {
	opts := ParseRecipeSortOrder("updated-desc,title-asc,depth-desc")
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	if opts[0].Field != SortFieldUpdated || opts[0].Direction != SortDesc {
		t.Fatalf("unexpected first option %+v", opts[0])
	}
	if opts[1].Field != SortFieldTitle || opts[1].Direction != SortAsc {
		t.Fatalf("unexpected second option %+v", opts[1])
	}
	if opts[2].Field != SortFieldDepth || opts[2].Direction != SortDesc {
		t.Fatalf("unexpected third option %+v", opts[2])
	}
}

func TestParseRecipeSortOrderSkipsInvalid(t *testing.T) {
	opts := ParseRecipeSortOrder("unknown-desc,updated-ascending,,title-desc,title-asc")
	if len(opts) != 2 {
		t.Fatalf("expected 2 valid options, got %d", len(opts))
	}
	if opts[0].Field != SortFieldUpdated || opts[0].Direction != SortAsc {
		t.Fatalf("unexpected updated option %+v", opts[0])
	}
	if opts[1].Field != SortFieldTitle || opts[1].Direction != SortDesc {
		t.Fatalf("unexpected title option %+v", opts[1])
	}
}

func TestEncodeRecipeSortOrder(t *testing.T) {
	order := EncodeRecipeSortOrder([]RecipeSortOption{
		{Field: SortFieldUpdated, Direction: SortDesc},
		{Field: SortFieldTitle, Direction: SortAsc},
	})
	if order != "updated-desc,title-asc" {
		t.Fatalf("unexpected encoded order %q", order)
	}
}

func TestSortRecipes(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recipes := []*Recipe{
		{ID: "a", Title: "Banana bread", CreatedAt: base},
		{ID: "b", Title: "apple pie", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Title: "Carrot cake", CreatedAt: base},
	}

	SortRecipes(recipes, nil)
	got := []string{recipes[0].ID, recipes[1].ID, recipes[2].ID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("default order = %v, want %v", got, want)
		}
	}

	SortRecipes(recipes, ParseRecipeSortOrder("title-asc"))
	if recipes[0].ID != "b" || recipes[2].ID != "c" {
		t.Fatalf("title order = %s,%s,%s", recipes[0].ID, recipes[1].ID, recipes[2].ID)
	}
}
