package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// EmployeeDetails ties an employee account to the store they stock.
type EmployeeDetails struct {
	StoreID       *uuid.UUID `json:"storeId,omitempty"`
	StoreName     string     `json:"storeName,omitempty"`
	StoreLocation string     `json:"storeLocation,omitempty"`
	EmployeeID    string     `json:"employeeId,omitempty"`
	Department    string     `json:"department,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	IsActive      bool       `json:"isActive"`
}

// User is an account of any role.
type User struct {
	ID              uuid.UUID                            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string                               `gorm:"column:name;not null" json:"name"`
	Email           string                               `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash    string                               `gorm:"column:password_hash;not null" json:"-"`
	Role            enums.Role                           `gorm:"column:role;type:text;not null" json:"role"`
	EmployeeDetails datatypes.JSONType[*EmployeeDetails] `gorm:"column:employee_details" json:"employeeDetails,omitempty"`
	LastLoginAt     *time.Time                           `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time                            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time                            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	if u.Role == "" {
		u.Role = enums.RoleUser
	}
	return nil
}

func (u *User) BeforeSave(*gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// Employee returns the employee details, or nil for non-employees.
func (u *User) Employee() *EmployeeDetails {
	return u.EmployeeDetails.Data()
}

// StoreName is the store an employee is scoped to.
func (u *User) StoreName() string {
	if details := u.Employee(); details != nil {
		return details.StoreName
	}
	return ""
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
