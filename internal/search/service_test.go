package search

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/cache"
	"github.com/grocerease/grocerease-backend/pkg/db/dbtest"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type itemSeed struct {
	name     string
	store    string
	category enums.Category
	unit     enums.Unit
	price    string
	active   bool
	promo    string
	expires  *time.Time
}

func seedItems(t *testing.T, conn *gorm.DB, seeds ...itemSeed) []models.GroceryItem {
	t.Helper()
	out := make([]models.GroceryItem, 0, len(seeds))
	for i, s := range seeds {
		unit := s.unit
		if unit == "" {
			unit = enums.UnitEach
		}
		item := models.GroceryItem{
			ItemName:      s.name,
			Price:         decimal.RequireFromString(s.price),
			Promotion:     s.promo,
			DealExpiresAt: s.expires,
			Store:         models.StoreSnapshot{Name: s.store, Location: "Downtown"},
			UnitDetails:   models.UnitDetails{Unit: unit, Quantity: decimal.NewFromInt(1)},
			Category:      s.category,
			IsActive:      s.active,
			CreatedAt:     baseTime.Add(time.Duration(i) * time.Hour),
		}
		if err := conn.Create(&item).Error; err != nil {
			t.Fatalf("seed %s: %v", s.name, err)
		}
		out = append(out, item)
	}
	return out
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:  NewRepository(conn),
		Cache: cache.NewMemory(),
		Clock: func() time.Time { return baseTime.Add(48 * time.Hour) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func catalogue(t *testing.T, conn *gorm.DB) []models.GroceryItem {
	expired := baseTime
	future := baseTime.Add(30 * 24 * time.Hour)
	return seedItems(t, conn,
		itemSeed{name: "Apples", store: "Fresh Mart", category: enums.CategoryProduce, unit: enums.UnitLb, price: "2.50", active: true},
		itemSeed{name: "Apple Juice", store: "Corner Grocer", category: enums.CategoryBeverages, unit: enums.UnitGallon, price: "4.00", active: true, promo: "2 for 1", expires: &future},
		itemSeed{name: "Pineapple", store: "Fresh Mart", category: enums.CategoryProduce, price: "3.00", active: false},
		itemSeed{name: "Sourdough", store: "Corner Grocer", category: enums.CategoryBakery, price: "6.25", active: true, promo: "10% off", expires: &expired},
		itemSeed{name: "Ribeye", store: "Fresh Mart", category: enums.CategoryMeat, unit: enums.UnitKg, price: "24.00", active: true},
	)
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestSearchMatchesActiveItemsNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)

	res, err := svc.Search(context.Background(), Params{Q: "apple"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("expected two active apple items, got %d", len(res.Results))
	}
	if res.Results[0].ItemName != "Apple Juice" || res.Results[1].ItemName != "Apples" {
		t.Fatalf("expected newest first, got %s then %s", res.Results[0].ItemName, res.Results[1].ItemName)
	}
	if res.Pagination.TotalItems != 2 || res.Pagination.ItemsPerPage != 20 || res.Pagination.CurrentPage != 1 {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
	if res.AppliedFilters.Query != "apple" || res.AppliedFilters.SortBy != SortRelevance {
		t.Fatalf("unexpected applied filters %+v", res.AppliedFilters)
	}
	if len(res.AvailableFilters.Categories) != 4 || len(res.AvailableFilters.Stores) != 2 {
		t.Fatalf("unexpected facets %+v", res.AvailableFilters)
	}
}

func TestSearchShortQueryAndInactive(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)

	res, err := svc.Search(context.Background(), Params{Q: "AP", IncludeInactive: "true"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("expected three items including inactive, got %d", len(res.Results))
	}
}

func TestSearchFiltersAndSorts(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	res, err := svc.Search(ctx, Params{MinPrice: "3", MaxPrice: "10", SortBy: "price", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 2 || res.Results[0].ItemName != "Sourdough" {
		t.Fatalf("unexpected price window %+v", names(res.Results))
	}

	res, err = svc.Search(ctx, Params{Categories: []string{"produce", "meat"}, Stores: []string{"Fresh Mart"}, SortBy: "name"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := names(res.Results); len(got) != 2 || got[0] != "Apples" || got[1] != "Ribeye" {
		t.Fatalf("unexpected category/store results %v", got)
	}

	res, err = svc.Search(ctx, Params{ValidDealsOnly: "true"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := names(res.Results); len(got) != 1 || got[0] != "Apple Juice" {
		t.Fatalf("expected only the unexpired deal, got %v", got)
	}

	res, err = svc.Search(ctx, Params{Limit: "2", Page: "2", SortBy: "oldest"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := names(res.Results); len(got) != 2 || got[0] != "Sourdough" || !res.Pagination.HasPrevPage || res.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected second page %v %+v", got, res.Pagination)
	}
}

func TestSearchRejectsInvalidParams(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)

	_, err := svc.Search(context.Background(), Params{MinPrice: "9", MaxPrice: "1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := pkgerrors.As(err).Details().(map[string]any)
	if errs, _ := details["errors"].([]string); len(errs) != 1 {
		t.Fatalf("expected one validation message, got %v", details)
	}
}

func TestAdvancedExcludesAndLocates(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)

	var req AdvancedRequest
	req.CategoryFilters.Exclude = []string{"produce", "meat"}
	req.LocationFilters.Locations = []string{"Downtown"}
	req.SortOptions.SortBy = "name"
	res, err := svc.Advanced(context.Background(), req)
	if err != nil {
		t.Fatalf("advanced: %v", err)
	}
	if got := names(res.Results); len(got) != 2 || got[0] != "Apple Juice" || got[1] != "Sourdough" {
		t.Fatalf("unexpected advanced results %v", got)
	}

	req.LocationFilters.Locations = []string{"Uptown"}
	res, err = svc.Advanced(context.Background(), req)
	if err != nil {
		t.Fatalf("advanced: %v", err)
	}
	if len(res.Results) != 0 {
		t.Fatalf("expected no items uptown, got %v", names(res.Results))
	}
}

func TestPresets(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	res, err := svc.Preset(ctx, PresetBudgetFriendly, Params{})
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if got := names(res.Results); len(got) != 2 || got[0] != "Apples" || got[1] != "Apple Juice" {
		t.Fatalf("unexpected budget items %v", got)
	}

	res, err = svc.Preset(ctx, PresetPremium, Params{})
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if got := names(res.Results); len(got) != 1 || got[0] != "Ribeye" {
		t.Fatalf("unexpected premium items %v", got)
	}

	_, err = svc.Preset(ctx, "clearance", Params{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFiltersAreCached(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	first, err := svc.Filters(ctx)
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	if !first.PriceRange.Min.Equal(decimal.RequireFromString("2.5")) || !first.PriceRange.Max.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("unexpected price range %+v", first.PriceRange)
	}
	if len(first.SortOptions) != len(SortOptions()) {
		t.Fatalf("expected sort options")
	}

	seedItems(t, conn, itemSeed{name: "Salmon", store: "Harbor Fish", category: enums.CategorySeafood, price: "12.00", active: true})
	second, err := svc.Filters(ctx)
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	if len(second.Stores) != len(first.Stores) {
		t.Fatalf("expected cached stores, got %v", second.Stores)
	}
}

func TestSuggestions(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	empty, err := svc.Suggestions(ctx, "a", "", "")
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(empty.Items)+len(empty.Stores)+len(empty.Categories) != 0 {
		t.Fatalf("expected no suggestions for a one-letter query, got %+v", empty)
	}

	got, err := svc.Suggestions(ctx, "app", "items", "1")
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0] != "Apple Juice" || len(got.Stores) != 0 {
		t.Fatalf("unexpected item suggestions %+v", got)
	}

	got, err = svc.Suggestions(ctx, "fresh", "all", "")
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(got.Stores) != 1 || got.Stores[0] != "Fresh Mart" {
		t.Fatalf("unexpected store suggestions %+v", got)
	}

	got, err = svc.Suggestions(ctx, "pro", "categories", "")
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "produce" {
		t.Fatalf("unexpected category suggestions %+v", got)
	}

	if _, err := svc.Suggestions(ctx, "pro", "brands", ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func names(items []models.GroceryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ItemName)
	}
	return out
}

func TestSearchToleratesMalformedParams(t *testing.T) {
	conn := dbtest.Open(t)
	catalogue(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	cases := []struct {
		name    string
		params  Params
		results int
		perPage int
	}{
		{name: "oversized limit is capped", params: Params{Limit: "500"}, results: 4, perPage: 100},
		{name: "non-numeric price ignored", params: Params{MinPrice: "abc"}, results: 4, perPage: 20},
		{name: "negative price ignored", params: Params{MinPrice: "-3"}, results: 4, perPage: 20},
		{name: "unknown category matches nothing", params: Params{Categories: []string{"toys"}}, results: 0, perPage: 20},
		{name: "non-numeric page defaults", params: Params{Page: "first"}, results: 4, perPage: 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Search(ctx, tc.params)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(res.Results) != tc.results || res.Pagination.ItemsPerPage != tc.perPage {
				t.Fatalf("expected %d results at %d per page, got %d at %d", tc.results, tc.perPage, len(res.Results), res.Pagination.ItemsPerPage)
			}
		})
	}

	for _, p := range []Params{
		{Page: "0"},
		{CreatedAfter: "2024-03-01", CreatedBefore: "2024-01-01"},
	} {
		if _, err := svc.Search(ctx, p); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", p, err)
		}
	}
}
