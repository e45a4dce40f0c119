package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GroceryList is a user's shopping list.
type GroceryList struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Name      string            `gorm:"column:name;not null" json:"name"`
	Items     []GroceryListItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (l *GroceryList) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// Total is the sum of price times quantity across lines.
func (l *GroceryList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.Items {
		total = total.Add(line.Subtotal())
	}
	return total
}

// GroceryListItem snapshots an item's name, price and store at the time it was added.
type GroceryListItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ListID    uuid.UUID       `gorm:"column:list_id;type:uuid;not null;index" json:"listId"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null" json:"itemId"`
	ItemName  string          `gorm:"column:item_name;not null" json:"itemName"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	StoreName string          `gorm:"column:store_name;not null" json:"storeName"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (i *GroceryListItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i GroceryListItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
