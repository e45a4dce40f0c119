package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/grocerease/grocerease-backend/pkg/enums"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// Params is the raw query string of a catalogue search. Multi-valued fields
// accept repeated keys and comma-separated values.
type Params struct {
	Q               string
	Categories      []string
	Stores          []string
	Units           []string
	MinPrice        string
	MaxPrice        string
	HasPromotion    string
	ValidDealsOnly  string
	IncludeInactive string
	SortBy          string
	SortOrder       string
	Page            string
	Limit           string
	CreatedAfter    string
	CreatedBefore   string
}

// ParamsFromQuery reads Params from URL query values.
func ParamsFromQuery(v url.Values) Params {
	return Params{
		Q:               v.Get("q"),
		Categories:      v["category"],
		Stores:          v["store"],
		Units:           v["unit"],
		MinPrice:        v.Get("minPrice"),
		MaxPrice:        v.Get("maxPrice"),
		HasPromotion:    v.Get("hasPromotion"),
		ValidDealsOnly:  v.Get("validDealsOnly"),
		IncludeInactive: v.Get("includeInactive"),
		SortBy:          v.Get("sortBy"),
		SortOrder:       v.Get("sortOrder"),
		Page:            v.Get("page"),
		Limit:           v.Get("limit"),
		CreatedAfter:    v.Get("createdAfter"),
		CreatedBefore:   v.Get("createdBefore"),
	}
}

// ValidationResult lists every problem found in a Params value.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateSearchParams checks ranges and formats without touching the database.
// Errors are reported in a stable order.
func ValidateSearchParams(p Params) ValidationResult {
	var err error

	minPrice, minOK := checkPrice("minPrice", p.MinPrice, &err)
	maxPrice, maxOK := checkPrice("maxPrice", p.MaxPrice, &err)
	if minOK && maxOK && minPrice > maxPrice {
		err = multierr.Append(err, errors.New("minPrice cannot be greater than maxPrice"))
	}

	if raw := strings.TrimSpace(p.Page); raw != "" {
		if page, convErr := strconv.Atoi(raw); convErr != nil || page < 1 {
			err = multierr.Append(err, errors.New("page must be a positive integer"))
		}
	}
	if raw := strings.TrimSpace(p.Limit); raw != "" {
		if limit, convErr := strconv.Atoi(raw); convErr != nil || limit < 1 || limit > pagination.MaxLimit {
			err = multierr.Append(err, fmt.Errorf("limit must be between 1 and %d", pagination.MaxLimit))
		}
	}

	after, afterOK := checkDate("createdAfter", p.CreatedAfter, &err)
	before, beforeOK := checkDate("createdBefore", p.CreatedBefore, &err)
	if afterOK && beforeOK && after.After(before) {
		err = multierr.Append(err, errors.New("createdAfter cannot be after createdBefore"))
	}

	for _, c := range cleanValues(p.Categories) {
		if !enums.Category(c).IsValid() {
			err = multierr.Append(err, fmt.Errorf("invalid category: %s", c))
		}
	}
	for _, u := range cleanValues(p.Units) {
		if !enums.Unit(u).IsValid() {
			err = multierr.Append(err, fmt.Errorf("invalid unit: %s", u))
		}
	}

	if order := strings.TrimSpace(p.SortOrder); order != "" && !strings.EqualFold(order, "asc") && !strings.EqualFold(order, "desc") {
		err = multierr.Append(err, errors.New("sortOrder must be asc or desc"))
	}
	for _, f := range []struct{ name, raw string }{
		{"hasPromotion", p.HasPromotion},
		{"validDealsOnly", p.ValidDealsOnly},
		{"includeInactive", p.IncludeInactive},
	} {
		if _, ok := parseFlag(f.raw); !ok {
			err = multierr.Append(err, fmt.Errorf("%s must be true or false", f.name))
		}
	}

	return toResult(err)
}

// CheckSearchParams is the lenient gate used by the query-string endpoints.
// Malformed prices and flags drop out and limit is clamped when the query is
// built; only contradictory ranges and an explicit page below one are refused.
func CheckSearchParams(p Params) ValidationResult {
	var err error

	minPrice, minOK := ParsePrice(p.MinPrice)
	maxPrice, maxOK := ParsePrice(p.MaxPrice)
	if minOK && maxOK && minPrice > maxPrice {
		err = multierr.Append(err, errors.New("minPrice cannot be greater than maxPrice"))
	}

	after, afterOK := ParseDate(p.CreatedAfter)
	before, beforeOK := ParseDate(p.CreatedBefore)
	if afterOK && beforeOK && after.After(before) {
		err = multierr.Append(err, errors.New("createdAfter cannot be after createdBefore"))
	}

	if page, convErr := strconv.Atoi(strings.TrimSpace(p.Page)); convErr == nil && page < 1 {
		err = multierr.Append(err, errors.New("page must be a positive integer"))
	}

	return toResult(err)
}

func toResult(err error) ValidationResult {
	errs := multierr.Errors(err)
	out := ValidationResult{IsValid: len(errs) == 0, Errors: make([]string, 0, len(errs))}
	for _, e := range errs {
		out.Errors = append(out.Errors, e.Error())
	}
	return out
}

func checkPrice(name, raw string, acc *error) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}
	v, ok := ParsePrice(raw)
	if !ok {
		*acc = multierr.Append(*acc, fmt.Errorf("%s must be a non-negative number", name))
	}
	return v, ok
}

func checkDate(name, raw string, acc *error) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	v, ok := ParseDate(raw)
	if !ok {
		*acc = multierr.Append(*acc, fmt.Errorf("%s must be a date (YYYY-MM-DD or RFC 3339)", name))
	}
	return v, ok
}

// ParseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// parseFlag reads an optional boolean query flag; empty means false.
func parseFlag(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func flag(raw string) bool {
	v, _ := parseFlag(raw)
	return v
}
