package search

import (
	"time"

	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// Query is a fully resolved catalogue query.
type Query struct {
	Filter  Filter
	Sort    Sort
	Page    pagination.Params
	Applied AppliedFilters
}

// AppliedFilters echoes the constraints a search actually used.
type AppliedFilters struct {
	Query           string   `json:"q,omitempty"`
	Categories      []string `json:"category,omitempty"`
	Stores          []string `json:"store,omitempty"`
	Units           []string `json:"unit,omitempty"`
	MinPrice        *float64 `json:"minPrice,omitempty"`
	MaxPrice        *float64 `json:"maxPrice,omitempty"`
	HasPromotion    bool     `json:"hasPromotion"`
	ValidDealsOnly  bool     `json:"validDealsOnly"`
	IncludeInactive bool     `json:"includeInactive"`
	SortBy          string   `json:"sortBy"`
	SortOrder       string   `json:"sortOrder"`
}

// BuildQuery composes every fragment for p. Callers validate p first; values
// that do not parse are dropped rather than rejected here.
func BuildQuery(p Params, now time.Time) Query {
	includeInactive := flag(p.IncludeInactive)
	hasPromotion := flag(p.HasPromotion)
	validDeals := flag(p.ValidDealsOnly)

	var after, before *time.Time
	if t, ok := ParseDate(p.CreatedAfter); ok {
		after = &t
	}
	if t, ok := ParseDate(p.CreatedBefore); ok {
		before = &t
	}

	filter := Merge(
		BuildTextQuery(p.Q),
		BuildActiveFilter(includeInactive),
		BuildPriceFilter(p.MinPrice, p.MaxPrice),
		BuildCategoryFilter(p.Categories...),
		BuildStoreFilter(p.Stores...),
		BuildUnitFilter(p.Units...),
		BuildPromotionFilter(hasPromotion, validDeals, now),
		BuildDateFilter(after, before),
	)

	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = SortRelevance
	}
	sorting := BuildSort(sortBy, p.SortOrder, p.Q)

	applied := AppliedFilters{
		Query:           p.Q,
		Categories:      cleanValues(p.Categories),
		Stores:          cleanValues(p.Stores),
		Units:           cleanValues(p.Units),
		HasPromotion:    hasPromotion,
		ValidDealsOnly:  validDeals,
		IncludeInactive: includeInactive,
		SortBy:          sorting.Key,
		SortOrder:       "asc",
	}
	if sorting.Desc {
		applied.SortOrder = "desc"
	}
	if v, ok := ParsePrice(p.MinPrice); ok {
		applied.MinPrice = &v
	}
	if v, ok := ParsePrice(p.MaxPrice); ok {
		applied.MaxPrice = &v
	}

	return Query{
		Filter:  filter,
		Sort:    sorting,
		Page:    BuildPagination(p.Page, p.Limit),
		Applied: applied,
	}
}

// Scoped restricts q to extra fragments, which win over q's own on key collisions.
func (q Query) Scoped(extra Filter) Query {
	q.Filter = Merge(q.Filter, extra)
	return q
}
