package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// StoreSnapshot is the denormalised store an item is sold at.
type StoreSnapshot struct {
	Name     string                      `gorm:"column:store_name;not null;index" json:"name"`
	Location string                      `gorm:"column:store_location;not null" json:"location"`
	Address  datatypes.JSONType[Address] `gorm:"column:store_address" json:"address"`
}

type Image struct {
	URL string `gorm:"column:image_url" json:"url,omitempty"`
	Alt string `gorm:"column:image_alt" json:"alt,omitempty"`
}

type UnitDetails struct {
	Unit         enums.Unit      `gorm:"column:unit;type:text;not null" json:"unit"`
	Quantity     decimal.Decimal `gorm:"column:unit_quantity;type:numeric(10,3);not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(10,2);not null" json:"pricePerUnit"`
}

// StockChange is the last stock transition applied to an item.
type StockChange struct {
	UpdatedBy      uuid.UUID         `json:"updatedBy"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	PreviousStatus enums.StockStatus `json:"previousStatus"`
	NewStatus      enums.StockStatus `json:"newStatus"`
	Reason         string            `json:"reason,omitempty"`
}

// GroceryItem is a priced product at one store.
type GroceryItem struct {
	ID              uuid.UUID                        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ItemName        string                           `gorm:"column:item_name;not null" json:"itemName"`
	Price           decimal.Decimal                  `gorm:"column:price;type:numeric(10,2);not null;index" json:"price"`
	OriginalPrice   *decimal.Decimal                 `gorm:"column:original_price;type:numeric(10,2)" json:"originalPrice,omitempty"`
	Promotion       string                           `gorm:"column:promotion;not null" json:"promotion,omitempty"`
	Store           StoreSnapshot                    `gorm:"embedded" json:"store"`
	Image           Image                            `gorm:"embedded" json:"image"`
	UnitDetails     UnitDetails                      `gorm:"embedded" json:"unitDetails"`
	Category        enums.Category                   `gorm:"column:category;type:text;not null;index" json:"category"`
	IsActive        bool                             `gorm:"column:is_active;not null" json:"isActive"`
	DealExpiresAt   *time.Time                       `gorm:"column:deal_expires_at" json:"dealExpiresAt,omitempty"`
	StockStatus     enums.StockStatus                `gorm:"column:stock_status;type:text;not null" json:"stockStatus"`
	StockCount      int                              `gorm:"column:stock_count;not null" json:"stockCount"`
	LastStockUpdate datatypes.JSONType[*StockChange] `gorm:"column:last_stock_update" json:"lastStockUpdate,omitempty"`
	CreatedBy       *uuid.UUID                       `gorm:"column:created_by;type:uuid" json:"createdBy,omitempty"`
	CreatedAt       time.Time                        `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time                        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (i *GroceryItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	if i.StockStatus == "" {
		i.StockStatus = enums.StockStatusInStock
	}
	if i.UnitDetails.Unit == "" {
		i.UnitDetails.Unit = enums.UnitEach
	}
	return nil
}

func (i *GroceryItem) BeforeSave(*gorm.DB) error {
	i.UnitDetails.PricePerUnit = PricePerUnit(i.Price, i.UnitDetails.Quantity)
	return nil
}

// PricePerUnit is price/quantity rounded to cents, zero for non-positive quantities.
func PricePerUnit(price, quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return price.DivRound(quantity, 2)
}

// HasValidDeal reports whether the item carries a promotion that has not expired.
func (i *GroceryItem) HasValidDeal(now time.Time) bool {
	if i.Promotion == "" {
		return false
	}
	return i.DealExpiresAt == nil || i.DealExpiresAt.After(now)
}

// ApplyStockStatus moves the item to status and keeps isActive in step with it.
func (i *GroceryItem) ApplyStockStatus(status enums.StockStatus) {
	i.StockStatus = status
	switch status {
	case enums.StockStatusDiscontinued:
		i.IsActive = false
	case enums.StockStatusInStock:
		i.IsActive = true
	}
}
