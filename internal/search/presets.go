package search

import (
	"sort"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

const (
	PresetDeals          = "deals"
	PresetFreshProduce   = "fresh-produce"
	PresetBudgetFriendly = "budget-friendly"
	PresetPremium        = "premium"
	PresetBulkItems      = "bulk-items"
)

// presets overlay fixed filters and sort on the caller's paging and text query.
var presets = map[string]func(Params) Params{
	PresetDeals: func(p Params) Params {
		p.HasPromotion = "true"
		p.ValidDealsOnly = "true"
		p.SortBy, p.SortOrder = SortNewest, "desc"
		return p
	},
	PresetFreshProduce: func(p Params) Params {
		p.Categories = []string{enums.CategoryProduce.String()}
		p.SortBy, p.SortOrder = SortNewest, "desc"
		return p
	},
	PresetBudgetFriendly: func(p Params) Params {
		p.MaxPrice = "5"
		p.SortBy, p.SortOrder = SortPrice, "asc"
		return p
	},
	PresetPremium: func(p Params) Params {
		p.MinPrice = "20"
		p.SortBy, p.SortOrder = SortPrice, "desc"
		return p
	},
	PresetBulkItems: func(p Params) Params {
		p.Units = []string{
			enums.UnitPack.String(),
			enums.UnitDozen.String(),
			enums.UnitGallon.String(),
			enums.UnitKg.String(),
		}
		p.SortBy, p.SortOrder = SortPricePerUnit, "asc"
		return p
	},
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset returns base with the named preset applied.
func ApplyPreset(name string, base Params) (Params, bool) {
	apply, ok := presets[name]
	if !ok {
		return base, false
	}
	return apply(base), true
}
