package lists

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grocerease/grocerease-backend/pkg/db/models"
)

// ListInput names a list on create and rename.
type ListInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddItemInput is the body of POST /lists/{id}/items. Quantity defaults to one.
type AddItemInput struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"gte=0,lte=999"`
}

// QuantityInput is the body of PATCH /lists/{id}/items/{lineId}.
type QuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=999"`
}

// ListDTO is a list with its computed total.
type ListDTO struct {
	*models.GroceryList
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

func FromModel(list *models.GroceryList) *ListDTO {
	if list == nil {
		return nil
	}
	if list.Items == nil {
		list.Items = []models.GroceryListItem{}
	}
	count := 0
	for _, line := range list.Items {
		count += line.Quantity
	}
	return &ListDTO{GroceryList: list, ItemCount: count, Total: list.Total()}
}
