package stores

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/grocerease/grocerease-backend/pkg/db/models"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Location       string                `json:"location"`
	Address        models.Address        `json:"address"`
	Contact        models.Contact        `json:"contact"`
	OperatingHours models.OperatingHours `json:"operatingHours"`
	Employees      []uuid.UUID           `json:"employees"`
	EmployeeCount  int                   `json:"employeeCount"`
	IsActive       bool                  `json:"isActive"`
	ManagerID      *uuid.UUID            `json:"manager,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// CreateStoreInput holds creation-time data for a new store.
type CreateStoreInput struct {
	Name           string                 `json:"name" validate:"required,max=100"`
	Location       string                 `json:"location" validate:"required,max=200"`
	Address        models.Address         `json:"address"`
	Contact        models.Contact         `json:"contact"`
	OperatingHours *models.OperatingHours `json:"operatingHours,omitempty"`
	ManagerID      *uuid.UUID             `json:"manager,omitempty"`
}

// UpdateStoreInput captures the allowed store fields for mutation; nil keeps the current value.
type UpdateStoreInput struct {
	Name           *string                `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Location       *string                `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Address        *models.Address        `json:"address,omitempty"`
	Contact        *models.Contact        `json:"contact,omitempty"`
	OperatingHours *models.OperatingHours `json:"operatingHours,omitempty"`
	IsActive       *bool                  `json:"isActive,omitempty"`
	ManagerID      *uuid.UUID             `json:"manager,omitempty"`
}

type AssignEmployeeInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// DeleteResult reports whether a delete only deactivated the store.
type DeleteResult struct {
	Deactivated bool `json:"deactivated"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	employees := make([]uuid.UUID, len(m.EmployeeIDs))
	copy(employees, m.EmployeeIDs)
	return &StoreDTO{
		ID:             m.ID,
		Name:           m.Name,
		Location:       m.Location,
		Address:        m.Address.Data(),
		Contact:        m.Contact.Data(),
		OperatingHours: m.OperatingHours.Data(),
		Employees:      employees,
		EmployeeCount:  len(employees),
		IsActive:       m.IsActive,
		ManagerID:      m.ManagerID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation input, supplying defaults.
func (c CreateStoreInput) ToModel() *models.Store {
	hours := models.OperatingHours{}
	if c.OperatingHours != nil {
		hours = *c.OperatingHours
	}
	return &models.Store{
		Name:           c.Name,
		Location:       c.Location,
		Address:        datatypes.NewJSONType(c.Address),
		Contact:        datatypes.NewJSONType(c.Contact),
		OperatingHours: datatypes.NewJSONType(hours),
		EmployeeIDs:    datatypes.JSONSlice[uuid.UUID]{},
		IsActive:       true,
		ManagerID:      c.ManagerID,
	}
}
