package items

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/repo"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// Repository wires together grocery item persistence and the stock log.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *Repository) Create(ctx context.Context, item *models.GroceryItem) error {
	return r.DB(ctx).Create(item).Error
}

// FindByID loads the item without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GroceryItem, error) {
	var item models.GroceryItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAll returns every item, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.GroceryItem, error) {
	out := []models.GroceryItem{}
	if err := r.DB(ctx).Order("created_at DESC").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SaveStock writes only the stock fields of item.
func (r *Repository) SaveStock(ctx context.Context, item *models.GroceryItem) error {
	return r.DB(ctx).
		Model(item).
		Select("stock_status", "stock_count", "is_active", "last_stock_update", "updated_at").
		Updates(item).
		Error
}

// SetActive flips is_active without touching anything else.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	res := r.DB(ctx).
		Model(&models.GroceryItem{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"is_active": active, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the item with its stock log and reports.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	conn := r.DB(ctx)
	if err := conn.Where("item_id = ?", id).Delete(&models.StockUpdate{}).Error; err != nil {
		return err
	}
	if err := conn.Where("item_id = ?", id).Delete(&models.Report{}).Error; err != nil {
		return err
	}
	res := conn.Delete(&models.GroceryItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendStockUpdate adds one entry to the item's stock history.
func (r *Repository) AppendStockUpdate(ctx context.Context, entry *models.StockUpdate) error {
	return r.DB(ctx).Create(entry).Error
}

// StockHistory lists the item's stock changes, newest first.
func (r *Repository) StockHistory(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockUpdate, error) {
	out := []models.StockUpdate{}
	query := r.DB(ctx).Where("item_id = ?", itemID).Order("created_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountByStockStatus counts items per stock status, optionally for one store.
// Every status is present in the result.
func (r *Repository) CountByStockStatus(ctx context.Context, storeName string) (map[enums.StockStatus]int64, error) {
	var rows []struct {
		StockStatus enums.StockStatus
		Total       int64
	}
	query := r.DB(ctx).Model(&models.GroceryItem{}).Select("stock_status, COUNT(*) AS total")
	if storeName != "" {
		query = query.Where("store_name = ?", storeName)
	}
	if err := query.Group("stock_status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[enums.StockStatus]int64, len(enums.StockStatuses()))
	for _, status := range enums.StockStatuses() {
		out[status] = 0
	}
	for _, row := range rows {
		out[row.StockStatus] = row.Total
	}
	return out, nil
}

// Counts is a catalogue-wide tally used by the admin dashboard.
type Counts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	OnDeal   int64 `json:"onDeal"`
}

func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var out Counts
	base := r.DB(ctx).Model(&models.GroceryItem{})
	if err := base.Session(&gorm.Session{}).Count(&out.Total).Error; err != nil {
		return out, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_active = ?", true).Count(&out.Active).Error; err != nil {
		return out, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_active = ? AND promotion <> ''", true).Count(&out.OnDeal).Error; err != nil {
		return out, err
	}
	out.Inactive = out.Total - out.Active
	return out, nil
}
