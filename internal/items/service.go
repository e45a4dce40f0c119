package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

const itemNotFoundMessage = "Item not found"

// Service exposes catalogue item operations.
type Service interface {
	ListAll(ctx context.Context) ([]models.GroceryItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.GroceryItem, error)
	Create(ctx context.Context, input CreateItemInput, createdBy uuid.UUID) (*models.GroceryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type storeFinder interface {
	FindByName(ctx context.Context, name string) (*models.Store, error)
}

type service struct {
	repo   *Repository
	stores storeFinder
	tx     db.Transactor
	logg   *logger.Logger
}

// ServiceParams bundles the item service dependencies.
type ServiceParams struct {
	Repo   *Repository
	Stores storeFinder
	Tx     db.Transactor
	Logger *logger.Logger
}

// NewService constructs an item service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{repo: params.Repo, stores: params.Stores, tx: params.Tx, logg: params.Logger}, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.GroceryItem, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.GroceryItem, error) {
	return Load(ctx, s.repo, id)
}

// Load fetches an item and maps a miss to NOT_FOUND.
func Load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.GroceryItem, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(itemNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

// Create resolves the store snapshot by name and inserts the item.
func (s *service) Create(ctx context.Context, input CreateItemInput, createdBy uuid.UUID) (*models.GroceryItem, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	store, err := s.stores.FindByName(ctx, strings.TrimSpace(input.StoreName))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("Store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsActive {
		return nil, pkgerrors.Validation("Store is not active")
	}

	item := input.ToModel(store, createdBy)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"item_id": item.ID.String(),
		"store":   item.Store.Name,
	}), "item.created")
	return item, nil
}

func validateCreate(input CreateItemInput) error {
	switch {
	case strings.TrimSpace(input.ItemName) == "":
		return pkgerrors.Validation("Item name is required")
	case strings.TrimSpace(input.StoreName) == "":
		return pkgerrors.Validation("Store is required")
	case input.Price.IsNegative():
		return pkgerrors.Validation("Price cannot be negative")
	case input.OriginalPrice != nil && input.OriginalPrice.IsNegative():
		return pkgerrors.Validation("Original price cannot be negative")
	case input.Quantity.IsNegative():
		return pkgerrors.Validation("Quantity cannot be negative")
	case input.StockCount < 0:
		return pkgerrors.Validation("Stock count cannot be negative")
	case !input.Category.IsValid():
		return pkgerrors.Validation("Invalid category")
	case input.Unit != "" && !input.Unit.IsValid():
		return pkgerrors.Validation("Invalid unit")
	case input.StockStatus != "" && !input.StockStatus.IsValid():
		return pkgerrors.Validation("Invalid stock status")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound(itemNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	s.logg.Info(s.logg.WithField(ctx, "item_id", id.String()), "item.deleted")
	return nil
}
