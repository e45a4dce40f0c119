// Package search turns catalogue query parameters into GORM filter, sort and
// pagination fragments and runs them against grocery_items.
package search

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// Fragment keys.
const (
	KeyOr            = "$or"
	KeyText          = "$text"
	KeyActive        = "isActive"
	KeyPrice         = "price"
	KeyCategory      = "category"
	KeyCategoryNotIn = "category.exclude"
	KeyStore         = "store.name"
	KeyLocation      = "store.location"
	KeyUnit          = "unitDetails.unit"
	KeyPromotion     = "promotion"
	KeyDealExpiresAt = "dealExpiresAt"
	KeyCreatedAt     = "createdAt"
)

// Queries this short match by substring instead of full text.
const shortQueryLength = 2

// Filter maps a fragment key to its WHERE expression.
type Filter map[string]clause.Expression

// Keys returns the fragment keys in sorted order.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scope applies every fragment, in key order, as an AND-ed WHERE.
func (f Filter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, key := range f.Keys() {
			db = db.Where(f[key])
		}
		return db
	}
}

// Merge shallow-merges fragments; later fragments win on key collisions.
func Merge(fragments ...Filter) Filter {
	out := Filter{}
	for _, fragment := range fragments {
		for k, v := range fragment {
			out[k] = v
		}
	}
	return out
}

// ParsePrice parses a non-negative finite price.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// BuildTextQuery matches q against item and store names. Short queries use a
// case-insensitive substring match; longer ones use full-text search.
func BuildTextQuery(q string) Filter {
	q = strings.TrimSpace(q)
	if q == "" {
		return Filter{}
	}
	if len([]rune(q)) <= shortQueryLength {
		return Filter{KeyOr: substringMatch{Term: q}}
	}
	return Filter{KeyText: textMatch{Query: q}}
}

// BuildActiveFilter limits results to active items unless includeInactive is set.
func BuildActiveFilter(includeInactive bool) Filter {
	if includeInactive {
		return Filter{}
	}
	return Filter{KeyActive: clause.Eq{Column: clause.Column{Name: "is_active"}, Value: true}}
}

// BuildPriceFilter bounds price by whichever of min and max parse.
func BuildPriceFilter(min, max string) Filter {
	lo, hasMin := ParsePrice(min)
	hi, hasMax := ParsePrice(max)
	column := clause.Column{Name: "price"}
	switch {
	case hasMin && hasMax:
		return Filter{KeyPrice: clause.And(clause.Gte{Column: column, Value: lo}, clause.Lte{Column: column, Value: hi})}
	case hasMin:
		return Filter{KeyPrice: clause.Gte{Column: column, Value: lo}}
	case hasMax:
		return Filter{KeyPrice: clause.Lte{Column: column, Value: hi}}
	default:
		return Filter{}
	}
}

func BuildCategoryFilter(values ...string) Filter {
	return membership(KeyCategory, "category", values)
}

func BuildStoreFilter(values ...string) Filter {
	return membership(KeyStore, "store_name", values)
}

func BuildUnitFilter(values ...string) Filter {
	return membership(KeyUnit, "unit", values)
}

// BuildLocationFilter matches the denormalised store location.
func BuildLocationFilter(values ...string) Filter {
	return membership(KeyLocation, "store_location", values)
}

// BuildCategoryExclusion drops the given categories.
func BuildCategoryExclusion(values ...string) Filter {
	cleaned := cleanValues(values)
	if len(cleaned) == 0 {
		return Filter{}
	}
	return Filter{KeyCategoryNotIn: clause.Not(clause.IN{Column: clause.Column{Name: "category"}, Values: toAny(cleaned)})}
}

// BuildPromotionFilter requires a promotion and/or an unexpired deal.
func BuildPromotionFilter(hasPromotion, validDealsOnly bool, now time.Time) Filter {
	out := Filter{}
	if hasPromotion || validDealsOnly {
		out[KeyPromotion] = clause.Neq{Column: clause.Column{Name: "promotion"}, Value: ""}
	}
	if validDealsOnly {
		column := clause.Column{Name: "deal_expires_at"}
		out[KeyDealExpiresAt] = clause.Or(
			clause.Eq{Column: column, Value: nil},
			clause.Gt{Column: column, Value: now},
		)
	}
	return out
}

// BuildDateFilter bounds created_at; nil bounds are open.
func BuildDateFilter(after, before *time.Time) Filter {
	column := clause.Column{Name: "created_at"}
	switch {
	case after != nil && before != nil:
		return Filter{KeyCreatedAt: clause.And(clause.Gte{Column: column, Value: *after}, clause.Lte{Column: column, Value: *before})}
	case after != nil:
		return Filter{KeyCreatedAt: clause.Gte{Column: column, Value: *after}}
	case before != nil:
		return Filter{KeyCreatedAt: clause.Lte{Column: column, Value: *before}}
	default:
		return Filter{}
	}
}

// BuildPagination parses page and limit, falling back to page 1 and the
// default limit and capping limit at pagination.MaxLimit.
func BuildPagination(page, limit string) pagination.Params {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		p = pagination.DefaultPage
	}
	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		l = pagination.DefaultLimit
	}
	return pagination.Normalize(p, l)
}

func membership(key, column string, values []string) Filter {
	cleaned := cleanValues(values)
	switch len(cleaned) {
	case 0:
		return Filter{}
	case 1:
		return Filter{key: clause.Eq{Column: clause.Column{Name: column}, Value: cleaned[0]}}
	default:
		return Filter{key: clause.IN{Column: clause.Column{Name: column}, Values: toAny(cleaned)}}
	}
}

// cleanValues trims, de-duplicates and drops the "all" wildcard. Any "all"
// entry removes the constraint entirely.
func cleanValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			v := strings.TrimSpace(part)
			if v == "" {
				continue
			}
			if strings.EqualFold(v, "all") {
				return nil
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
