// Package lists manages users' grocery lists. Every operation is scoped to the
// owner; lists belonging to someone else read as missing.
package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

const (
	listNotFoundMessage = "List not found"
	lineNotFoundMessage = "List item not found"
	maxQuantity         = 999
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]ListDTO, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*ListDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input ListInput) (*ListDTO, error)
	Rename(ctx context.Context, userID, id uuid.UUID, input ListInput) (*ListDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	AddItem(ctx context.Context, userID, id uuid.UUID, input AddItemInput) (*ListDTO, error)
	UpdateQuantity(ctx context.Context, userID, id, lineID uuid.UUID, input QuantityInput) (*ListDTO, error)
	RemoveItem(ctx context.Context, userID, id, lineID uuid.UUID) (*ListDTO, error)
}

type service struct {
	repo  *Repository
	items *items.Repository
	tx    db.Transactor
	logg  *logger.Logger
	now   func() time.Time
}

type ServiceParams struct {
	Repo   *Repository
	Items  *items.Repository
	Tx     db.Transactor
	Logger *logger.Logger
	Clock  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("list repository required")
	case params.Items == nil:
		return nil, fmt.Errorf("item repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{repo: params.Repo, items: params.Items, tx: params.Tx, logg: params.Logger, now: params.Clock}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ListDTO, error) {
	found, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grocery lists")
	}
	out := make([]ListDTO, 0, len(found))
	for i := range found {
		out = append(out, *FromModel(&found[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*ListDTO, error) {
	list, err := loadOwned(ctx, s.repo, id, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(list), nil
}

func loadOwned(ctx context.Context, repo *Repository, id, userID uuid.UUID) (*models.GroceryList, error) {
	list, err := repo.FindOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(listNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load grocery list")
	}
	return list, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.Validation("List name is required")
	}
	if len([]rune(name)) > 100 {
		return "", pkgerrors.Validation("List name cannot exceed 100 characters")
	}
	return name, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input ListInput) (*ListDTO, error) {
	name, err := cleanName(input.Name)
	if err != nil {
		return nil, err
	}
	list := &models.GroceryList{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create grocery list")
	}
	s.logg.Info(s.logg.WithField(ctx, "list_id", list.ID.String()), "list.created")
	return FromModel(list), nil
}

func (s *service) Rename(ctx context.Context, userID, id uuid.UUID, input ListInput) (*ListDTO, error) {
	name, err := cleanName(input.Name)
	if err != nil {
		return nil, err
	}
	list, err := loadOwned(ctx, s.repo, id, userID)
	if err != nil {
		return nil, err
	}
	list.Name = name
	list.UpdatedAt = s.now().UTC()
	if err := s.repo.Rename(ctx, list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename grocery list")
	}
	return FromModel(list), nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.withOwned(ctx, userID, id, func(repo *Repository, _ *models.GroceryList) error {
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grocery list")
		}
		return nil
	})
}

// AddItem snapshots the item onto the list. Adding an item already on the
// list increases that line's quantity instead.
func (s *service) AddItem(ctx context.Context, userID, id uuid.UUID, input AddItemInput) (*ListDTO, error) {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > maxQuantity {
		return nil, pkgerrors.Validation(fmt.Sprintf("Quantity must be between 1 and %d", maxQuantity))
	}

	var out *models.GroceryList
	err := s.withOwned(ctx, userID, id, func(repo *Repository, list *models.GroceryList) error {
		for i := range list.Items {
			line := &list.Items[i]
			if line.ItemID != input.ItemID {
				continue
			}
			if line.Quantity+quantity > maxQuantity {
				return pkgerrors.Validation(fmt.Sprintf("Quantity must be between 1 and %d", maxQuantity))
			}
			line.Quantity += quantity
			if err := repo.SetQuantity(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update list item")
			}
			out = list
			return s.touch(ctx, repo, list)
		}

		item, err := items.Load(ctx, s.items.WithTx(repo.Conn()), input.ItemID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			return pkgerrors.Validation("Item is not available")
		}
		line := models.GroceryListItem{
			ListID:    list.ID,
			ItemID:    item.ID,
			ItemName:  item.ItemName,
			Price:     item.Price,
			StoreName: item.Store.Name,
			Quantity:  quantity,
		}
		if err := repo.AddLine(ctx, &line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add list item")
		}
		list.Items = append(list.Items, line)
		out = list
		return s.touch(ctx, repo, list)
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, id, lineID uuid.UUID, input QuantityInput) (*ListDTO, error) {
	if input.Quantity < 1 || input.Quantity > maxQuantity {
		return nil, pkgerrors.Validation(fmt.Sprintf("Quantity must be between 1 and %d", maxQuantity))
	}
	var out *models.GroceryList
	err := s.withOwned(ctx, userID, id, func(repo *Repository, list *models.GroceryList) error {
		line := findLine(list, lineID)
		if line == nil {
			return pkgerrors.NotFound(lineNotFoundMessage)
		}
		line.Quantity = input.Quantity
		if err := repo.SetQuantity(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update list item")
		}
		out = list
		return s.touch(ctx, repo, list)
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) RemoveItem(ctx context.Context, userID, id, lineID uuid.UUID) (*ListDTO, error) {
	var out *models.GroceryList
	err := s.withOwned(ctx, userID, id, func(repo *Repository, list *models.GroceryList) error {
		if findLine(list, lineID) == nil {
			return pkgerrors.NotFound(lineNotFoundMessage)
		}
		if err := repo.DeleteLine(ctx, lineID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove list item")
		}
		kept := list.Items[:0]
		for _, line := range list.Items {
			if line.ID != lineID {
				kept = append(kept, line)
			}
		}
		list.Items = kept
		out = list
		return s.touch(ctx, repo, list)
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func findLine(list *models.GroceryList, lineID uuid.UUID) *models.GroceryListItem {
	for i := range list.Items {
		if list.Items[i].ID == lineID {
			return &list.Items[i]
		}
	}
	return nil
}

func (s *service) touch(ctx context.Context, repo *Repository, list *models.GroceryList) error {
	if err := repo.Touch(ctx, list, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch grocery list")
	}
	return nil
}

// withOwned runs fn in a transaction with the caller's list loaded.
func (s *service) withOwned(ctx context.Context, userID, id uuid.UUID, fn func(*Repository, *models.GroceryList) error) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		list, err := loadOwned(ctx, repo, id, userID)
		if err != nil {
			return err
		}
		return fn(repo, list)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grocery list transaction")
	}
	return nil
}
