package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/users"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

const (
	storeNotFoundMessage = "Store not found"
	storeExistsMessage   = "Store with this name already exists"
)

// Service exposes store operations.
type Service interface {
	List(ctx context.Context, includeInactive bool, q string) ([]StoreDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	Employees(ctx context.Context, id uuid.UUID) ([]users.UserDTO, error)
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	AddEmployee(ctx context.Context, storeID, userID uuid.UUID) (*StoreDTO, error)
	RemoveEmployee(ctx context.Context, storeID, userID uuid.UUID) (*StoreDTO, error)
}

type service struct {
	repo  *Repository
	users *users.Repository
	tx    db.Transactor
	logg  *logger.Logger
	now   func() time.Time
}

// ServiceParams bundles the store service dependencies.
type ServiceParams struct {
	Repo   *Repository
	Users  *users.Repository
	Tx     db.Transactor
	Logger *logger.Logger
	Clock  func() time.Time
}

// NewService builds a store service with the provided repositories.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		repo:  params.Repo,
		users: params.Users,
		tx:    params.Tx,
		logg:  params.Logger,
		now:   params.Clock,
	}, nil
}

func (s *service) List(ctx context.Context, includeInactive bool, q string) ([]StoreDTO, error) {
	list, err := s.repo.List(ctx, includeInactive, strings.TrimSpace(q))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) Employees(ctx context.Context, id uuid.UUID) ([]users.UserDTO, error) {
	store, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	list, err := s.users.FindByIDs(ctx, store.EmployeeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	return users.FromModels(list), nil
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)
	if input.Name == "" || input.Location == "" {
		return nil, pkgerrors.Validation("Store name and location are required")
	}

	if _, err := s.repo.FindByName(ctx, input.Name); err == nil {
		return nil, pkgerrors.Conflict(storeExistsMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store name")
	}

	store := input.ToModel()
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, mapWriteError(err, "create store")
	}
	s.logg.Info(s.logg.WithField(ctx, "store_id", store.ID.String()), "store.created")
	return FromModel(store), nil
}

// Update applies input and, on a name, location or address change, rewrites
// the employees' denormalised store fields and the item snapshots in the same
// transaction.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	var updated *models.Store
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		oldName, oldLocation, oldAddress := store.Name, store.Location, store.Address.Data()

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.Validation("Store name cannot be empty")
			}
			if name != store.Name {
				other, err := repo.FindByName(ctx, name)
				if err == nil && other.ID != store.ID {
					return pkgerrors.Conflict(storeExistsMessage)
				}
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store name")
				}
			}
			store.Name = name
		}
		if input.Location != nil {
			location := strings.TrimSpace(*input.Location)
			if location == "" {
				return pkgerrors.Validation("Store location cannot be empty")
			}
			store.Location = location
		}
		if input.Address != nil {
			store.Address = datatypes.NewJSONType(*input.Address)
		}
		if input.Contact != nil {
			store.Contact = datatypes.NewJSONType(*input.Contact)
		}
		if input.OperatingHours != nil {
			store.OperatingHours = datatypes.NewJSONType(*input.OperatingHours)
		}
		if input.IsActive != nil {
			store.IsActive = *input.IsActive
		}
		if input.ManagerID != nil {
			store.ManagerID = input.ManagerID
		}

		if err := repo.Save(ctx, store); err != nil {
			return mapWriteError(err, "update store")
		}

		if store.Name != oldName || store.Location != oldLocation || store.Address.Data() != oldAddress {
			if err := s.propagate(ctx, tx, store, oldName); err != nil {
				return err
			}
		}
		updated = store
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete hard-deletes an empty store; a store with employees is only deactivated.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	result := &DeleteResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if len(store.EmployeeIDs) > 0 {
			store.IsActive = false
			if err := repo.Save(ctx, store); err != nil {
				return mapWriteError(err, "deactivate store")
			}
			result.Deactivated = true
			return nil
		}
		if err := repo.Delete(ctx, store.ID); err != nil {
			return mapWriteError(err, "delete store")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddEmployee assigns the user to the store, moving them off any previous
// store. The user becomes an employee.
func (s *service) AddEmployee(ctx context.Context, storeID, userID uuid.UUID) (*StoreDTO, error) {
	var updated *models.Store
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		store, err := s.load(ctx, repo, storeID)
		if err != nil {
			return err
		}
		user, err := loadUser(ctx, userRepo, userID)
		if err != nil {
			return err
		}
		if user.Role == enums.RoleAdmin {
			return pkgerrors.Validation("Admins cannot be assigned to a store")
		}
		if store.HasEmployee(user.ID) {
			return pkgerrors.Conflict("User is already an employee of this store")
		}

		if details := user.Employee(); details != nil && details.StoreID != nil && *details.StoreID != store.ID {
			if err := userRepo.DetachFromStore(ctx, *details.StoreID, user.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach from previous store")
			}
		}

		start := s.now().UTC()
		details := &models.EmployeeDetails{StartDate: &start}
		if existing := user.Employee(); existing != nil {
			cpy := *existing
			details = &cpy
			if details.StartDate == nil {
				details.StartDate = &start
			}
		}
		storeRef := store.ID
		details.StoreID = &storeRef
		details.StoreName = store.Name
		details.StoreLocation = store.Location
		details.IsActive = true
		user.EmployeeDetails = datatypes.NewJSONType(details)
		user.Role = enums.RoleEmployee

		store.AddEmployee(user.ID)
		if err := repo.Save(ctx, store); err != nil {
			return mapWriteError(err, "add employee")
		}
		if err := userRepo.Save(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
		}
		updated = store
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// RemoveEmployee unassigns the user. They keep the employee role but lose store access.
func (s *service) RemoveEmployee(ctx context.Context, storeID, userID uuid.UUID) (*StoreDTO, error) {
	var updated *models.Store
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		store, err := s.load(ctx, repo, storeID)
		if err != nil {
			return err
		}
		if !store.RemoveEmployee(userID) {
			return pkgerrors.NotFound("Employee not assigned to this store")
		}
		if err := repo.Save(ctx, store); err != nil {
			return mapWriteError(err, "remove employee")
		}

		user, err := userRepo.FindByID(ctx, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
		default:
			if details := user.Employee(); details != nil {
				cpy := *details
				cpy.StoreID = nil
				cpy.StoreName = ""
				cpy.StoreLocation = ""
				cpy.IsActive = false
				user.EmployeeDetails = datatypes.NewJSONType(&cpy)
				if err := userRepo.Save(ctx, user); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
				}
			}
		}
		updated = store
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) propagate(ctx context.Context, tx *gorm.DB, store *models.Store, oldName string) error {
	userRepo := s.users.WithTx(tx)
	employees, err := userRepo.FindByIDs(ctx, store.EmployeeIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employees")
	}
	for i := range employees {
		details := employees[i].Employee()
		if details == nil {
			continue
		}
		cpy := *details
		cpy.StoreName = store.Name
		cpy.StoreLocation = store.Location
		employees[i].EmployeeDetails = datatypes.NewJSONType(&cpy)
		if err := userRepo.Save(ctx, &employees[i]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee store")
		}
	}

	count, err := s.repo.WithTx(tx).SyncItemSnapshots(ctx, oldName, store.Snapshot(), s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item snapshots")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"store_id":  store.ID.String(),
		"employees": len(employees),
		"items":     count,
	}), "store.snapshot.propagated")
	return nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Store, error) {
	store, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(storeNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func loadUser(ctx context.Context, repo *users.Repository, id uuid.UUID) (*models.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func mapWriteError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.NotFound(storeNotFoundMessage)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Conflict(storeExistsMessage)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
