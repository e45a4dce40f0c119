package items

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// CreateItemInput holds the validated payload to create a grocery item.
type CreateItemInput struct {
	ItemName      string            `json:"itemName" validate:"required,max=200"`
	Price         decimal.Decimal   `json:"price"`
	OriginalPrice *decimal.Decimal  `json:"originalPrice,omitempty"`
	Promotion     string            `json:"promotion,omitempty" validate:"max=200"`
	StoreName     string            `json:"storeName" validate:"max=100"`
	Image         models.Image      `json:"image"`
	Unit          enums.Unit        `json:"unit,omitempty"`
	Quantity      decimal.Decimal   `json:"quantity"`
	Category      enums.Category    `json:"category" validate:"required"`
	DealExpiresAt *time.Time        `json:"dealExpiresAt,omitempty"`
	StockStatus   enums.StockStatus `json:"stockStatus,omitempty"`
	StockCount    int               `json:"stockCount" validate:"gte=0"`
	IsActive      *bool             `json:"isActive,omitempty"`
}

// ToModel builds the item for store, defaulting quantity to one and active to true.
func (in CreateItemInput) ToModel(store *models.Store, createdBy uuid.UUID) *models.GroceryItem {
	quantity := in.Quantity
	if !quantity.IsPositive() {
		quantity = decimal.NewFromInt(1)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	item := &models.GroceryItem{
		ItemName:      strings.TrimSpace(in.ItemName),
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Promotion:     strings.TrimSpace(in.Promotion),
		Store:         store.Snapshot(),
		Image:         in.Image,
		UnitDetails:   models.UnitDetails{Unit: in.Unit, Quantity: quantity},
		Category:      in.Category,
		IsActive:      active,
		DealExpiresAt: in.DealExpiresAt,
		StockStatus:   in.StockStatus,
		StockCount:    in.StockCount,
	}
	if createdBy != uuid.Nil {
		item.CreatedBy = &createdBy
	}
	if in.StockStatus == enums.StockStatusDiscontinued {
		item.IsActive = false
	}
	return item
}
