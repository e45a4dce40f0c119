package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
	"github.com/grocerease/grocerease-backend/pkg/security"
)

const userNotFoundMessage = "User not found"

// Service is the admin user-management surface.
type Service interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, actorID, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	ChangeRole(ctx context.Context, actorID, id uuid.UUID, role enums.Role) (*UserDTO, error)
	ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error
}

type service struct {
	repo        *Repository
	tx          db.Transactor
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build the users service.
type ServiceParams struct {
	Repo           *Repository
	Tx             db.Transactor
	PasswordConfig config.PasswordConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx, passwordCfg: params.PasswordConfig}, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Role != "" && !q.Role.IsValid() {
		return nil, pkgerrors.Validation("Invalid role filter")
	}
	q.Page = pagination.Normalize(q.Page.Page, q.Page.Limit)
	q.Q = strings.TrimSpace(q.Q)

	list, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return &ListResult{
		Users:      FromModels(list),
		Pagination: pagination.NewMeta(q.Page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actorID, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	var updated *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.Validation("Name cannot be empty")
			}
			user.Name = name
		}
		if input.Email != nil {
			email := models.NormalizeEmail(*input.Email)
			if email != user.Email {
				taken, err := repo.EmailTaken(ctx, email, user.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
				}
				if taken {
					return pkgerrors.Conflict("Email already in use")
				}
				user.Email = email
			}
		}
		if input.Role != nil && *input.Role != user.Role {
			if err := s.applyRole(ctx, repo, actorID, user, *input.Role); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, user); err != nil {
			return mapWriteError(err, "update user")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.Validation("You cannot delete your own account")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if details := user.Employee(); details != nil && details.StoreID != nil {
			if err := repo.DetachFromStore(ctx, *details.StoreID, user.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach employee")
			}
		}
		if err := repo.Delete(ctx, user.ID); err != nil {
			return mapWriteError(err, "delete user")
		}
		return nil
	})
}

func (s *service) ChangeRole(ctx context.Context, actorID, id uuid.UUID, role enums.Role) (*UserDTO, error) {
	var updated *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.applyRole(ctx, repo, actorID, user, role); err != nil {
			return err
		}
		if err := repo.Save(ctx, user); err != nil {
			return mapWriteError(err, "change role")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	user, err := s.load(ctx, s.repo, id)
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return PasswordError(err, s.passwordCfg)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset password")
	}
	return nil
}

// applyRole moves user to role. Leaving the employee role unlinks the user
// from their store.
func (s *service) applyRole(ctx context.Context, repo *Repository, actorID uuid.UUID, user *models.User, role enums.Role) error {
	if !role.IsValid() {
		return pkgerrors.Validation("Invalid role")
	}
	if actorID == user.ID && role != user.Role {
		return pkgerrors.Validation("You cannot change your own role")
	}
	if user.Role == enums.RoleEmployee && role != enums.RoleEmployee {
		if details := user.Employee(); details != nil && details.StoreID != nil {
			if err := repo.DetachFromStore(ctx, *details.StoreID, user.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach employee")
			}
		}
		user.EmployeeDetails = noEmployeeDetails()
	}
	user.Role = role
	return nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func mapWriteError(err error, action string) error {
	switch {
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.NotFound(userNotFoundMessage)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Conflict("Email already in use")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}

// PasswordError converts hashing failures into client-facing errors.
func PasswordError(err error, cfg config.PasswordConfig) error {
	if errors.Is(err, security.ErrPasswordTooShort) {
		return pkgerrors.Validation(fmt.Sprintf("Password must be at least %d characters", security.MinPasswordLength(cfg)))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
}

func noEmployeeDetails() datatypes.JSONType[*models.EmployeeDetails] {
	return datatypes.NewJSONType[*models.EmployeeDetails](nil)
}
