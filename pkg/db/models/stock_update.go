package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// StockUpdate is one entry in an item's append-only stock history.
type StockUpdate struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ItemID         uuid.UUID         `gorm:"column:item_id;type:uuid;not null;index" json:"itemId"`
	UpdatedBy      uuid.UUID         `gorm:"column:updated_by;type:uuid;not null" json:"updatedBy"`
	PreviousStatus enums.StockStatus `gorm:"column:previous_status;type:text;not null" json:"previousStatus"`
	NewStatus      enums.StockStatus `gorm:"column:new_status;type:text;not null" json:"newStatus"`
	PreviousCount  int               `gorm:"column:previous_count;not null" json:"previousCount"`
	NewCount       int               `gorm:"column:new_count;not null" json:"newCount"`
	Reason         string            `gorm:"column:reason;not null" json:"reason,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (s *StockUpdate) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
