package search

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/repo"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// Facet columns that may be read as distinct values.
const (
	columnItemName = "item_name"
	columnStore    = "store_name"
	columnCategory = "category"
	columnUnit     = "unit"
)

// Repository runs read-only catalogue queries over grocery_items.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) items(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Model(&models.GroceryItem{})
}

// Find returns one page of items matching filter in the given order.
func (r *Repository) Find(ctx context.Context, filter Filter, sorting Sort, page pagination.Params) ([]models.GroceryItem, error) {
	var out []models.GroceryItem
	err := r.items(ctx).
		Scopes(filter.Scope(), repo.Paginate(page)).
		Order(sorting.Order).
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many items match filter.
func (r *Repository) Count(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	if err := r.items(ctx).Scopes(filter.Scope()).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// DistinctValues lists the sorted distinct values of column among active items.
func (r *Repository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	out := []string{}
	err := r.items(ctx).
		Where("is_active = ?", true).
		Distinct().
		Order(column).
		Pluck(column, &out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PriceRange is the lowest and highest active price.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (r *Repository) PriceRange(ctx context.Context) (PriceRange, error) {
	var row struct {
		Min decimal.NullDecimal
		Max decimal.NullDecimal
	}
	err := r.items(ctx).
		Select("MIN(price) AS min, MAX(price) AS max").
		Where("is_active = ?", true).
		Scan(&row).
		Error
	if err != nil {
		return PriceRange{}, err
	}
	return PriceRange{Min: row.Min.Decimal, Max: row.Max.Decimal}, nil
}

// Matching lists up to limit distinct values of column containing term,
// among active items.
func (r *Repository) Matching(ctx context.Context, column, term string, limit int) ([]string, error) {
	out := []string{}
	err := r.items(ctx).
		Where("is_active = ?", true).
		Where("LOWER("+column+") LIKE ?"+likeEscape, repo.ContainsPattern(term)).
		Distinct().
		Order(column).
		Limit(limit).
		Pluck(column, &out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
