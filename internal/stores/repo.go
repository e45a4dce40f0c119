package stores

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/repo"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
)

// Repository provides access to stores and the denormalised store snapshot on items.
type Repository struct {
	repo.Base
}

// NewRepository returns a repository tied to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Create inserts a new store record.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	return r.DB(ctx).Create(store).Error
}

// FindByID loads a store by its identifier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *Repository) FindByName(ctx context.Context, name string) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).Where("name = ?", name).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns stores ordered by name, optionally including inactive ones.
func (r *Repository) List(ctx context.Context, includeInactive bool, q string) ([]models.Store, error) {
	query := r.DB(ctx).Model(&models.Store{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if q != "" {
		pattern := repo.ContainsPattern(q)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	var out []models.Store
	if err := query.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Save persists all store fields.
func (r *Repository) Save(ctx context.Context, store *models.Store) error {
	return r.DB(ctx).Save(store).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.Store{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SyncItemSnapshots rewrites the store snapshot on items that still carry oldName.
func (r *Repository) SyncItemSnapshots(ctx context.Context, oldName string, snapshot models.StoreSnapshot, at time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.GroceryItem{}).
		Where("store_name = ?", oldName).
		UpdateColumns(map[string]any{
			"store_name":     snapshot.Name,
			"store_location": snapshot.Location,
			"store_address":  snapshot.Address,
			"updated_at":     at,
		})
	return res.RowsAffected, res.Error
}

// CountActive returns the number of active stores.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Store{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
