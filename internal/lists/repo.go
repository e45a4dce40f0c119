package lists

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/repo"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
)

// Repository persists grocery lists and their lines.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id")
}

// ListByOwner returns every list owned by userID, most recently updated first.
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.GroceryList, error) {
	out := []models.GroceryList{}
	err := r.DB(ctx).
		Preload("Items", orderedLines).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id").
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindOwned loads a list only when userID owns it.
func (r *Repository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.GroceryList, error) {
	var list models.GroceryList
	err := r.DB(ctx).
		Preload("Items", orderedLines).
		Where("id = ? AND user_id = ?", id, userID).
		First(&list).
		Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *Repository) Create(ctx context.Context, list *models.GroceryList) error {
	return r.DB(ctx).Create(list).Error
}

func (r *Repository) Rename(ctx context.Context, list *models.GroceryList) error {
	return r.DB(ctx).Model(list).Select("name", "updated_at").Updates(list).Error
}

// Touch bumps the list's updated_at after a line change.
func (r *Repository) Touch(ctx context.Context, list *models.GroceryList, at time.Time) error {
	list.UpdatedAt = at
	return r.DB(ctx).Model(list).UpdateColumn("updated_at", at).Error
}

// Delete removes the list and all of its lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	conn := r.DB(ctx)
	if err := conn.Where("list_id = ?", id).Delete(&models.GroceryListItem{}).Error; err != nil {
		return err
	}
	return conn.Delete(&models.GroceryList{}, "id = ?", id).Error
}

func (r *Repository) AddLine(ctx context.Context, line *models.GroceryListItem) error {
	return r.DB(ctx).Create(line).Error
}

func (r *Repository) SetQuantity(ctx context.Context, line *models.GroceryListItem) error {
	return r.DB(ctx).Model(line).Select("quantity", "updated_at").Updates(line).Error
}

func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.DB(ctx).Delete(&models.GroceryListItem{}, "id = ?", lineID).Error
}
