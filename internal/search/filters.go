package search

import (
	"net/url"
	"strconv"
	"strings"
)

// SortOrder values accepted by /api/search/craftsmen.
const (
	SortRating   = "rating"
	SortReviews  = "reviews"
	SortPrice    = "price"
	SortDistance = "distance"
)

// DefaultPerPage is used when Filters.PerPage is unset.
const DefaultPerPage = 20

// Filters are the craftsman search parameters.
type Filters struct {
	Keyword      string
	Category     string
	City         string
	District     string
	MinRating    float64
	MaxPrice     float64
	VerifiedOnly bool
	SortBy       string
	Page         int
	PerPage      int
}

// Query builds the query string; zero values are omitted.
func (f Filters) Query() url.Values {
	values := url.Values{}

	setString := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			values.Set(key, v)
		}
	}
	setString("q", f.Keyword)
	setString("category", f.Category)
	setString("city", f.City)
	setString("district", f.District)
	setString("sort_by", f.SortBy)

	if f.MinRating > 0 {
		values.Set("min_rating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		values.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.VerifiedOnly {
		values.Set("verified", "true")
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("per_page", strconv.Itoa(perPage))

	return values
}

// ParseFilters reads filters back from a query string. Malformed numbers are
// treated as unset.
func ParseFilters(values url.Values) Filters {
	f := Filters{
		Keyword:  strings.TrimSpace(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
		City:     strings.TrimSpace(values.Get("city")),
		District: strings.TrimSpace(values.Get("district")),
		SortBy:   strings.TrimSpace(values.Get("sort_by")),
	}
	f.MinRating, _ = strconv.ParseFloat(values.Get("min_rating"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(values.Get("max_price"), 64)
	f.VerifiedOnly, _ = strconv.ParseBool(values.Get("verified"))
	f.Page, _ = strconv.Atoi(values.Get("page"))
	f.PerPage, _ = strconv.Atoi(values.Get("per_page"))
	return f
}
