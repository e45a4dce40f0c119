package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

type OperatingHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// Store is a physical grocery location.
type Store struct {
	ID             uuid.UUID                          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name           string                             `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Location       string                             `gorm:"column:location;not null" json:"location"`
	Address        datatypes.JSONType[Address]        `gorm:"column:address" json:"address"`
	Contact        datatypes.JSONType[Contact]        `gorm:"column:contact" json:"contact"`
	EmployeeIDs    datatypes.JSONSlice[uuid.UUID]     `gorm:"column:employee_ids" json:"employees"`
	OperatingHours datatypes.JSONType[OperatingHours] `gorm:"column:operating_hours" json:"operatingHours"`
	IsActive       bool                               `gorm:"column:is_active;not null" json:"isActive"`
	ManagerID      *uuid.UUID                         `gorm:"column:manager_id;type:uuid" json:"manager,omitempty"`
	CreatedAt      time.Time                          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time                          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	if s.EmployeeIDs == nil {
		s.EmployeeIDs = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

func (s *Store) HasEmployee(id uuid.UUID) bool {
	for _, candidate := range s.EmployeeIDs {
		if candidate == id {
			return true
		}
	}
	return false
}

// AddEmployee appends id once and reports whether it was added.
func (s *Store) AddEmployee(id uuid.UUID) bool {
	if s.HasEmployee(id) {
		return false
	}
	s.EmployeeIDs = append(s.EmployeeIDs, id)
	return true
}

func (s *Store) RemoveEmployee(id uuid.UUID) bool {
	kept := make(datatypes.JSONSlice[uuid.UUID], 0, len(s.EmployeeIDs))
	removed := false
	for _, candidate := range s.EmployeeIDs {
		if candidate == id {
			removed = true
			continue
		}
		kept = append(kept, candidate)
	}
	s.EmployeeIDs = kept
	return removed
}

// Snapshot is the denormalised copy stored on the store's items.
func (s *Store) Snapshot() StoreSnapshot {
	return StoreSnapshot{
		Name:     s.Name,
		Location: s.Location,
		Address:  datatypes.NewJSONType(s.Address.Data()),
	}
}
