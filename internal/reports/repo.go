package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grocerease/grocerease-backend/internal/repo"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// Repository persists item reports.
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

func (r *Repository) Create(ctx context.Context, report *models.Report) error {
	return r.DB(ctx).Create(report).Error
}

// FindByID loads a report with its item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.DB(ctx).Preload("Item").First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// FindActive returns the user's pending or under-review report on itemID.
func (r *Repository) FindActive(ctx context.Context, userID, itemID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := r.DB(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Where("status IN ?", enums.ActiveReportStatuses()).
		Order("created_at DESC").
		First(&report).
		Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Filter narrows List; zero values match everything.
type Filter struct {
	UserID *uuid.UUID
	Status enums.ReportStatus
}

// List returns one page of reports, newest first, with their items.
func (r *Repository) List(ctx context.Context, f Filter, page pagination.Params) ([]models.Report, int64, error) {
	base := r.DB(ctx).Model(&models.Report{})
	if f.UserID != nil {
		base = base.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []models.Report{}
	err := base.
		Preload("Item").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order("id").
		Scopes(repo.Paginate(page)).
		Find(&out).
		Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Save persists every report field so the status hooks run.
func (r *Repository) Save(ctx context.Context, report *models.Report) error {
	return r.DB(ctx).Omit(clause.Associations).Save(report).Error
}

// CountByStatus returns the number of reports per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.ReportStatus]int64, error) {
	var rows []struct {
		Status enums.ReportStatus
		Count  int64
	}
	if err := r.DB(ctx).Model(&models.Report{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[enums.ReportStatus]int64{}
	for _, status := range []enums.ReportStatus{
		enums.ReportStatusPending,
		enums.ReportStatusUnderReview,
		enums.ReportStatusResolved,
		enums.ReportStatusDismissed,
	} {
		out[status] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
