package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID              uuid.UUID               `json:"id"`
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	Role            enums.Role              `json:"role"`
	EmployeeDetails *models.EmployeeDetails `json:"employeeDetails,omitempty"`
	LastLoginAt     *time.Time              `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if details := u.Employee(); details != nil {
		cpy := *details
		dto.EmployeeDetails = &cpy
	}
	return dto
}

func FromModels(list []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

// ListQuery drives the admin user listing.
type ListQuery struct {
	Q         string
	Role      enums.Role
	SortBy    string
	SortOrder string
	Page      pagination.Params
}

// ListResult is a page of users plus its pagination block.
type ListResult struct {
	Users      []UserDTO       `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

// UpdateUserInput carries the admin-editable fields; nil leaves a field untouched.
type UpdateUserInput struct {
	Name  *string     `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email *string     `json:"email,omitempty" validate:"omitempty,email"`
	Role  *enums.Role `json:"role,omitempty"`
}

type ChangeRoleInput struct {
	Role enums.Role `json:"role" validate:"required"`
}

type ResetPasswordInput struct {
	NewPassword string `json:"newPassword" validate:"required"`
}
