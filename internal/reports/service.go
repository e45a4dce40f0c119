package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

const (
	duplicateMessage      = "You have already reported this item"
	reportNotFoundMessage = "Report not found"

	activeReportIndex = "idx_reports_one_active_per_user_item"
)

// Service handles item reports and their moderation.
type Service interface {
	Reasons() []Reason
	Create(ctx context.Context, userID uuid.UUID, input CreateReportInput) (*models.Report, error)
	Mine(ctx context.Context, userID uuid.UUID, page pagination.Params) (*ListResult, error)
	Check(ctx context.Context, userID, itemID uuid.UUID) (*Check, error)
	List(ctx context.Context, status string, page pagination.Params) (*ListResult, error)
	Moderate(ctx context.Context, actorID, id uuid.UUID, input ModerateInput) (*models.Report, error)
}

type service struct {
	repo  *Repository
	items *items.Repository
	tx    db.Transactor
	logg  *logger.Logger
	now   func() time.Time
}

// ServiceParams bundles the report service dependencies.
type ServiceParams struct {
	Repo   *Repository
	Items  *items.Repository
	Tx     db.Transactor
	Logger *logger.Logger
	Clock  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("report repository required")
	case params.Items == nil:
		return nil, fmt.Errorf("item repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{repo: params.Repo, items: params.Items, tx: params.Tx, logg: params.Logger, now: params.Clock}, nil
}

func (s *service) Reasons() []Reason {
	out := make([]Reason, 0, len(enums.ReportReasons()))
	for _, r := range enums.ReportReasons() {
		out = append(out, Reason{Value: r, Label: r.Label()})
	}
	return out
}

// Create files a pending report. A user may hold one active report per item.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateReportInput) (*models.Report, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.Validation("Item ID is required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.Validation("Invalid report reason").WithDetails(map[string]any{"validReasons": enums.ReportReasons()})
	}
	if _, err := items.Load(ctx, s.items, input.ItemID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindActive(ctx, userID, input.ItemID); err == nil {
		return nil, pkgerrors.Conflict(duplicateMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing report")
	}

	report := &models.Report{
		ItemID:      input.ItemID,
		UserID:      userID,
		Reason:      input.Reason,
		Description: strings.TrimSpace(input.Description),
		Status:      enums.ReportStatusPending,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, mapWriteError(err, "create report")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"report_id": report.ID.String(),
		"item_id":   report.ItemID.String(),
		"reason":    report.Reason.String(),
	}), "report.created")
	return report, nil
}

func (s *service) Mine(ctx context.Context, userID uuid.UUID, page pagination.Params) (*ListResult, error) {
	return s.list(ctx, Filter{UserID: &userID}, page)
}

func (s *service) Check(ctx context.Context, userID, itemID uuid.UUID) (*Check, error) {
	report, err := s.repo.FindActive(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Check{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check report")
	}
	return &Check{HasReported: true, Report: report}, nil
}

// List returns reports for moderation, optionally narrowed to one status.
func (s *service) List(ctx context.Context, status string, page pagination.Params) (*ListResult, error) {
	f := Filter{}
	if status = strings.TrimSpace(status); status != "" && status != "all" {
		parsed, err := enums.ParseReportStatus(status)
		if err != nil {
			return nil, pkgerrors.Validation("Invalid report status")
		}
		f.Status = parsed
	}
	return s.list(ctx, f, page)
}

func (s *service) list(ctx context.Context, f Filter, page pagination.Params) (*ListResult, error) {
	page = pagination.Normalize(page.Page, page.Limit)
	out, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reports")
	}
	return &ListResult{Reports: out, Pagination: pagination.NewMeta(page, total)}, nil
}

// Moderate moves a report to a new status. Closing statuses record a
// resolution; the deactivate-item action also hides the item.
func (s *service) Moderate(ctx context.Context, actorID, id uuid.UUID, input ModerateInput) (*models.Report, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.Validation("Invalid report status")
	}
	action := strings.TrimSpace(input.Action)
	if action == ActionDeactivateItem && input.Status != enums.ReportStatusResolved {
		return nil, pkgerrors.Validation("Items can only be deactivated when resolving a report")
	}

	now := s.now().UTC()
	var out *models.Report
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		report, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound(reportNotFoundMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report")
		}

		if input.Status.IsActive() && !report.Status.IsActive() {
			existing, err := repo.FindActive(ctx, report.UserID, report.ItemID)
			switch {
			case err == nil && existing.ID != report.ID:
				return pkgerrors.Conflict(duplicateMessage)
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing report")
			}
		}

		report.Status = input.Status
		if input.Status.IsActive() {
			report.Resolution = datatypes.NewJSONType[*models.ReportResolution](nil)
			report.ConfirmedAt = nil
		} else {
			report.Resolution = datatypes.NewJSONType(&models.ReportResolution{
				Action:     action,
				Note:       strings.TrimSpace(input.Note),
				ResolvedBy: actorID,
				ResolvedAt: now,
			})
			if input.Status == enums.ReportStatusResolved && report.ConfirmedAt == nil {
				report.ConfirmedAt = &now
			}
		}
		if err := repo.Save(ctx, report); err != nil {
			return mapWriteError(err, "save report")
		}

		if action == ActionDeactivateItem {
			if err := s.items.WithTx(tx).SetActive(ctx, report.ItemID, false, now); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.NotFound("Item not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate item")
			}
			if report.Item != nil {
				report.Item.IsActive = false
			}
		}
		out = report
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "moderate report")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"report_id": out.ID.String(),
		"status":    out.Status.String(),
		"action":    action,
	}), "report.moderated")
	return out, nil
}

// mapWriteError turns a lost race on the one-active-report index into the
// same conflict the pre-check returns.
func mapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, activeReportIndex) {
		return pkgerrors.Conflict(duplicateMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
