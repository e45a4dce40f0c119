package search

import (
	"strings"

	"gorm.io/gorm/clause"
)

const (
	SortPrice        = "price"
	SortName         = "name"
	SortStore        = "store"
	SortCategory     = "category"
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortRelevance    = "relevance"
	SortPricePerUnit = "price-per-unit"
)

// SortOption is one entry in the sortOptions list of /search/filters.
type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var sortOptions = []SortOption{
	{Value: SortRelevance, Label: "Relevance"},
	{Value: SortPrice, Label: "Price"},
	{Value: SortPricePerUnit, Label: "Price per unit"},
	{Value: SortName, Label: "Name"},
	{Value: SortStore, Label: "Store"},
	{Value: SortCategory, Label: "Category"},
	{Value: SortNewest, Label: "Newest"},
	{Value: SortOldest, Label: "Oldest"},
}

func SortOptions() []SortOption {
	out := make([]SortOption, len(sortOptions))
	copy(out, sortOptions)
	return out
}

var sortColumns = map[string]string{
	SortPrice:        "price",
	SortName:         "item_name",
	SortStore:        "store_name",
	SortCategory:     "category",
	SortPricePerUnit: "price_per_unit",
}

// Sort is a resolved ordering plus the key it was resolved to.
type Sort struct {
	Key   string
	Desc  bool
	Order clause.OrderBy
}

// BuildSort resolves sortBy/sortOrder into an ORDER BY. Unknown keys sort
// newest first. Relevance ranks by full text when text is a full-text
// query, otherwise it also sorts newest first. Ties break on id.
func BuildSort(sortBy, sortOrder, text string) Sort {
	key := strings.TrimSpace(sortBy)
	if key == "pricePerUnit" {
		key = SortPricePerUnit
	}
	desc := strings.EqualFold(strings.TrimSpace(sortOrder), "desc")
	id := clause.OrderByColumn{Column: clause.Column{Name: "id"}}

	switch key {
	case SortOldest:
		return Sort{Key: key, Order: clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}},
			id,
		}}}
	case SortRelevance:
		if _, ok := BuildTextQuery(text)[KeyText]; ok {
			return Sort{Key: key, Desc: true, Order: clause.OrderBy{Expression: rankOrder{Query: strings.TrimSpace(text)}}}
		}
		return newestFirst()
	}

	if column, ok := sortColumns[key]; ok {
		return Sort{Key: key, Desc: desc, Order: clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: column}, Desc: desc},
			id,
		}}}
	}
	return newestFirst()
}

func newestFirst() Sort {
	return Sort{Key: SortNewest, Desc: true, Order: clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}, Desc: true},
		{Column: clause.Column{Name: "id"}},
	}}}
}
