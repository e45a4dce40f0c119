package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

type ReportResolution struct {
	Action     string    `json:"action,omitempty"`
	Note       string    `json:"note,omitempty"`
	ResolvedBy uuid.UUID `json:"resolvedBy"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Report is a user's flag against a grocery item.
type Report struct {
	ID          uuid.UUID                             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ItemID      uuid.UUID                             `gorm:"column:item_id;type:uuid;not null;index" json:"itemId"`
	UserID      uuid.UUID                             `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Reason      enums.ReportReason                    `gorm:"column:reason;type:text;not null" json:"reason"`
	Description string                                `gorm:"column:description;not null" json:"description,omitempty"`
	Status      enums.ReportStatus                    `gorm:"column:status;type:text;not null;index" json:"status"`
	Resolution  datatypes.JSONType[*ReportResolution] `gorm:"column:resolution" json:"resolution,omitempty"`
	ConfirmedAt *time.Time                            `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`
	CreatedAt   time.Time                             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Item *GroceryItem `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:CASCADE" json:"item,omitempty"`
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	if r.Status == "" {
		r.Status = enums.ReportStatusPending
	}
	return nil
}

func (r *Report) BeforeSave(*gorm.DB) error {
	if r.Status == enums.ReportStatusResolved && r.ConfirmedAt == nil {
		now := time.Now().UTC()
		r.ConfirmedAt = &now
	}
	return nil
}
