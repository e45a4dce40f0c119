package search

import (
	"testing"
	"time"

	"gorm.io/gorm/clause"

	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2.50", 2.5, true},
		{" 10 ", 10, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParsePrice(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBuildTextQuery(t *testing.T) {
	if got := BuildTextQuery("   "); len(got) != 0 {
		t.Fatalf("expected empty filter for blank query, got %v", got)
	}

	short := BuildTextQuery(" ap ")
	match, ok := short[KeyOr].(substringMatch)
	if !ok || len(short) != 1 {
		t.Fatalf("expected a single $or fragment, got %v", short)
	}
	if match.Term != "ap" {
		t.Fatalf("expected trimmed term, got %q", match.Term)
	}

	long := BuildTextQuery(" apple ")
	text, ok := long[KeyText].(textMatch)
	if !ok || len(long) != 1 {
		t.Fatalf("expected a single $text fragment, got %v", long)
	}
	if text.Query != "apple" {
		t.Fatalf("expected trimmed query, got %q", text.Query)
	}
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		page, limit string
		want        pagination.Params
	}{
		{"", "", pagination.Params{Page: 1, Limit: 20, Skip: 0}},
		{"3", "10", pagination.Params{Page: 3, Limit: 10, Skip: 20}},
		{"2", "500", pagination.Params{Page: 2, Limit: 100, Skip: 100}},
		{"0", "-5", pagination.Params{Page: 1, Limit: 20, Skip: 0}},
		{"x", "y", pagination.Params{Page: 1, Limit: 20, Skip: 0}},
	}
	for _, tt := range tests {
		if got := BuildPagination(tt.page, tt.limit); got != tt.want {
			t.Fatalf("BuildPagination(%q,%q) = %+v want %+v", tt.page, tt.limit, got, tt.want)
		}
	}
}

func TestMembershipFilters(t *testing.T) {
	if got := BuildCategoryFilter("all"); len(got) != 0 {
		t.Fatalf("expected all to drop the constraint, got %v", got)
	}
	if got := BuildCategoryFilter("produce", "all"); len(got) != 0 {
		t.Fatalf("expected any all entry to drop the constraint, got %v", got)
	}
	if got := BuildStoreFilter(); len(got) != 0 {
		t.Fatalf("expected no constraint for empty input, got %v", got)
	}

	eq, ok := BuildCategoryFilter("produce")[KeyCategory].(clause.Eq)
	if !ok || eq.Value != "produce" {
		t.Fatalf("expected equality for a scalar, got %#v", eq)
	}

	in, ok := BuildUnitFilter("lb,kg", "lb")[KeyUnit].(clause.IN)
	if !ok || len(in.Values) != 2 {
		t.Fatalf("expected IN over two distinct units, got %#v", in)
	}
}

func TestBuildPriceFilter(t *testing.T) {
	if got := BuildPriceFilter("", "bad"); len(got) != 0 {
		t.Fatalf("expected no price constraint, got %v", got)
	}
	if _, ok := BuildPriceFilter("1", "")[KeyPrice].(clause.Gte); !ok {
		t.Fatalf("expected lower bound only")
	}
	if _, ok := BuildPriceFilter("", "9")[KeyPrice].(clause.Lte); !ok {
		t.Fatalf("expected upper bound only")
	}
	if _, ok := BuildPriceFilter("1", "9")[KeyPrice].(clause.AndConditions); !ok {
		t.Fatalf("expected both bounds")
	}
}

func TestBuildPromotionFilter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := BuildPromotionFilter(false, false, now); len(got) != 0 {
		t.Fatalf("expected no constraint, got %v", got)
	}
	promo := BuildPromotionFilter(true, false, now)
	if _, ok := promo[KeyPromotion]; !ok || len(promo) != 1 {
		t.Fatalf("expected promotion only, got %v", promo)
	}
	deals := BuildPromotionFilter(false, true, now)
	if _, ok := deals[KeyDealExpiresAt]; !ok || len(deals) != 2 {
		t.Fatalf("expected promotion and expiry, got %v", deals)
	}
}

func TestMergeLaterWins(t *testing.T) {
	merged := Merge(BuildStoreFilter("A"), BuildActiveFilter(false), BuildStoreFilter("B"))
	eq, ok := merged[KeyStore].(clause.Eq)
	if !ok || eq.Value != "B" {
		t.Fatalf("expected later store fragment to win, got %#v", merged[KeyStore])
	}
	if len(merged.Keys()) != 2 {
		t.Fatalf("expected two keys, got %v", merged.Keys())
	}
}

func TestStem(t *testing.T) {
	for in, want := range map[string]string{"Apples": "apple", "glass": "glass", "bus": "bus", "Milk": "milk"} {
		if got := stem(in); got != want {
			t.Fatalf("stem(%q) = %q want %q", in, got, want)
		}
	}
}
