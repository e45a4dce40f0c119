package search

import (
	"fmt"
	"strconv"
	"time"
)

// AdvancedRequest is the structured body of POST /search/advanced.
type AdvancedRequest struct {
	TextFilters struct {
		Query string `json:"query"`
	} `json:"textFilters"`
	PriceFilters struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"priceFilters"`
	LocationFilters struct {
		Stores    []string `json:"stores"`
		Locations []string `json:"locations"`
	} `json:"locationFilters"`
	CategoryFilters struct {
		Include []string `json:"include"`
		Exclude []string `json:"exclude"`
	} `json:"categoryFilters"`
	UnitFilters struct {
		Units []string `json:"units"`
	} `json:"unitFilters"`
	TimeFilters struct {
		CreatedAfter   string `json:"createdAfter"`
		CreatedBefore  string `json:"createdBefore"`
		HasPromotion   bool   `json:"hasPromotion"`
		ValidDealsOnly bool   `json:"validDealsOnly"`
	} `json:"timeFilters"`
	SortOptions struct {
		SortBy    string `json:"sortBy"`
		SortOrder string `json:"sortOrder"`
	} `json:"sortOptions"`
	Pagination struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	} `json:"pagination"`
	IncludeInactive bool `json:"includeInactive"`
}

// Params flattens the request into query parameters so it shares validation
// and fragment building with GET /search.
func (r AdvancedRequest) Params() Params {
	p := Params{
		Q:               r.TextFilters.Query,
		Categories:      r.CategoryFilters.Include,
		Stores:          r.LocationFilters.Stores,
		Units:           r.UnitFilters.Units,
		HasPromotion:    strconv.FormatBool(r.TimeFilters.HasPromotion),
		ValidDealsOnly:  strconv.FormatBool(r.TimeFilters.ValidDealsOnly),
		IncludeInactive: strconv.FormatBool(r.IncludeInactive),
		SortBy:          r.SortOptions.SortBy,
		SortOrder:       r.SortOptions.SortOrder,
		CreatedAfter:    r.TimeFilters.CreatedAfter,
		CreatedBefore:   r.TimeFilters.CreatedBefore,
	}
	if r.PriceFilters.Min != nil {
		p.MinPrice = strconv.FormatFloat(*r.PriceFilters.Min, 'f', -1, 64)
	}
	if r.PriceFilters.Max != nil {
		p.MaxPrice = strconv.FormatFloat(*r.PriceFilters.Max, 'f', -1, 64)
	}
	if r.Pagination.Page != nil {
		p.Page = strconv.Itoa(*r.Pagination.Page)
	}
	if r.Pagination.Limit != nil {
		p.Limit = strconv.Itoa(*r.Pagination.Limit)
	}
	return p
}

// Validate reports every problem with the request.
func (r AdvancedRequest) Validate() ValidationResult {
	res := ValidateSearchParams(r.Params())
	exclude := Params{Categories: r.CategoryFilters.Exclude}
	for _, msg := range ValidateSearchParams(exclude).Errors {
		res.Errors = append(res.Errors, fmt.Sprintf("exclude: %s", msg))
	}
	res.IsValid = len(res.Errors) == 0
	return res
}

// Query builds the catalogue query, adding the exclusions and location
// constraints GET /search has no parameters for.
func (r AdvancedRequest) Query(now time.Time) Query {
	q := BuildQuery(r.Params(), now)
	q.Filter = Merge(q.Filter,
		BuildCategoryExclusion(r.CategoryFilters.Exclude...),
		BuildLocationFilter(r.LocationFilters.Locations...),
	)
	return q
}
