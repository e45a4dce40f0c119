package reports

import (
	"github.com/google/uuid"

	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// ActionDeactivateItem hides the reported item while resolving the report.
const ActionDeactivateItem = "deactivate-item"

// CreateReportInput is the body of POST /reports.
type CreateReportInput struct {
	ItemID      uuid.UUID          `json:"itemId" validate:"required"`
	Reason      enums.ReportReason `json:"reason" validate:"required"`
	Description string             `json:"description,omitempty" validate:"max=1000"`
}

// ModerateInput is the body of PATCH /reports/{id}.
type ModerateInput struct {
	Status enums.ReportStatus `json:"status" validate:"required"`
	Action string             `json:"action,omitempty" validate:"max=100"`
	Note   string             `json:"note,omitempty" validate:"max=1000"`
}

// Reason is one selectable report reason.
type Reason struct {
	Value enums.ReportReason `json:"value"`
	Label string             `json:"label"`
}

// Check answers whether the user has an active report on an item.
type Check struct {
	HasReported bool           `json:"hasReported"`
	Report      *models.Report `json:"report"`
}

// ListResult is one page of reports.
type ListResult struct {
	Reports    []models.Report `json:"reports"`
	Pagination pagination.Meta `json:"pagination"`
}
