package search

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"testing"

	"github.com/ustamapp/ustamapp-client/internal/storage"
)

func TestRecentSearchesNewestFirstWithDedupe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, err := NewRecentSearches(storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewRecentSearches() error = %v", err)
	}

	for _, q := range []string{"elektrikçi", "boyacı", "  ", "Elektrikçi"} {
		if err := r.Add(ctx, q); err != nil {
			t.Fatalf("Add(%q) error = %v", q, err)
		}
	}

	got, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Elektrikçi", "boyacı"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
}

func TestRecentSearchesBounded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := NewRecentSearches(storage.NewMemoryStore())

	for i := 0; i < MaxRecentSearches+5; i++ {
		if err := r.Add(ctx, fmt.Sprintf("q%d", i)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	got, _ := r.List(ctx)
	if len(got) != MaxRecentSearches {
		t.Fatalf("len(List()) = %d, want %d", len(got), MaxRecentSearches)
	}
	if got[0] != "q14" || got[MaxRecentSearches-1] != "q5" {
		t.Fatalf("List() = %v", got)
	}

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := r.List(ctx); len(got) != 0 {
		t.Fatalf("List() after Clear = %v", got)
	}
}

func TestFiltersQuery(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		filters Filters
		want    string
	}{
		{name: "defaults", filters: Filters{}, want: "page=1&per_page=20"},
		{
			name: "all fields",
			filters: Filters{
				Keyword:      " tesisat ",
				Category:     "su",
				City:         "Ankara",
				MinRating:    4.5,
				MaxPrice:     500,
				VerifiedOnly: true,
				SortBy:       SortRating,
				Page:         2,
				PerPage:      10,
			},
			want: "category=su&city=Ankara&max_price=500&min_rating=4.5&page=2&per_page=10&q=tesisat&sort_by=rating&verified=true",
		},
	}

	for _, tt := range testCases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.filters.Query().Encode(); got != tt.want {
				t.Fatalf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFiltersReadsQuery(t *testing.T) {
	t.Parallel()

	in := Filters{
		Keyword:      "kombi",
		City:         "İstanbul",
		MinRating:    4,
		VerifiedOnly: true,
		SortBy:       SortReviews,
		Page:         3,
		PerPage:      5,
	}

	got := ParseFilters(in.Query())
	if got != in {
		t.Fatalf("ParseFilters() = %+v, want %+v", got, in)
	}

	if got := ParseFilters(url.Values{"page": {"x"}, "min_rating": {"high"}}); got.Page != 0 || got.MinRating != 0 {
		t.Fatalf("malformed numbers = %+v, want zero values", got)
	}
}
