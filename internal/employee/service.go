// Package employee scopes catalogue management to the store an employee works at.
package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/search"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/internal/users"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

const (
	noStoreMessage    = "Employee is not assigned to a store"
	otherStoreMessage = "You can only manage items from your assigned store"
	historyLimit      = 50
)

// StockUpdateInput is the body of PATCH /employee/products/{id}/stock.
type StockUpdateInput struct {
	StockStatus enums.StockStatus `json:"stockStatus" validate:"required"`
	StockCount  *int              `json:"stockCount,omitempty" validate:"omitempty,gte=0"`
	Reason      string            `json:"reason,omitempty" validate:"max=500"`
}

// History is the stock record of one item.
type History struct {
	ItemID     uuid.UUID            `json:"itemId"`
	LastUpdate *models.StockChange  `json:"lastUpdate"`
	History    []models.StockUpdate `json:"history"`
}

// Profile is the employee with the store they are assigned to.
type Profile struct {
	Employee users.UserDTO   `json:"employee"`
	Store    *stores.StoreDTO `json:"store"`
}

// Stats counts the items in the employee's scope by stock status.
type Stats struct {
	Store    string                      `json:"store,omitempty"`
	Total    int64                       `json:"total"`
	ByStatus map[enums.StockStatus]int64 `json:"byStatus"`
}

// Service exposes store-scoped catalogue operations. actor is the full
// record of the signed-in employee or admin.
type Service interface {
	Products(ctx context.Context, actor *models.User, p search.Params) (*search.Page, error)
	Product(ctx context.Context, actor *models.User, id uuid.UUID) (*models.GroceryItem, error)
	CreateProduct(ctx context.Context, actor *models.User, input items.CreateItemInput) (*models.GroceryItem, error)
	UpdateStock(ctx context.Context, actor *models.User, id uuid.UUID, input StockUpdateInput) (*models.GroceryItem, error)
	History(ctx context.Context, actor *models.User, id uuid.UUID) (*History, error)
	Profile(ctx context.Context, actor *models.User) (*Profile, error)
	Stats(ctx context.Context, actor *models.User) (*Stats, error)
}

type service struct {
	items   *items.Repository
	catalog items.Service
	search  search.Service
	stores  *stores.Repository
	tx      db.Transactor
	logg    *logger.Logger
	now     func() time.Time
}

// ServiceParams bundles the employee service dependencies.
type ServiceParams struct {
	Items   *items.Repository
	Catalog items.Service
	Search  search.Service
	Stores  *stores.Repository
	Tx      db.Transactor
	Logger  *logger.Logger
	Clock   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Items == nil:
		return nil, fmt.Errorf("item repository required")
	case params.Catalog == nil:
		return nil, fmt.Errorf("item service required")
	case params.Search == nil:
		return nil, fmt.Errorf("search service required")
	case params.Stores == nil:
		return nil, fmt.Errorf("store repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		items:   params.Items,
		catalog: params.Catalog,
		search:  params.Search,
		stores:  params.Stores,
		tx:      params.Tx,
		logg:    params.Logger,
		now:     params.Clock,
	}, nil
}

// scope returns the store name the actor is limited to; admins get "".
func scope(actor *models.User) (string, error) {
	if actor == nil {
		return "", pkgerrors.Unauthorized("Authentication required")
	}
	if actor.Role == enums.RoleAdmin {
		return "", nil
	}
	if actor.Role != enums.RoleEmployee {
		return "", pkgerrors.Forbidden("Employee access required")
	}
	name := strings.TrimSpace(actor.StoreName())
	if name == "" {
		return "", pkgerrors.Forbidden(noStoreMessage)
	}
	return name, nil
}

func checkItemScope(actor *models.User, item *models.GroceryItem) error {
	storeName, err := scope(actor)
	if err != nil {
		return err
	}
	if storeName != "" && item.Store.Name != storeName {
		return pkgerrors.Forbidden(otherStoreMessage)
	}
	return nil
}

func (s *service) Products(ctx context.Context, actor *models.User, p search.Params) (*search.Page, error) {
	storeName, err := scope(actor)
	if err != nil {
		return nil, err
	}
	if res := search.CheckSearchParams(p); !res.IsValid {
		return nil, search.InvalidParams(res)
	}
	q := search.BuildQuery(p, s.now())
	if storeName != "" {
		q = q.Scoped(search.BuildStoreFilter(storeName))
	}
	return s.search.Page(ctx, q)
}

func (s *service) Product(ctx context.Context, actor *models.User, id uuid.UUID) (*models.GroceryItem, error) {
	item, err := items.Load(ctx, s.items, id)
	if err != nil {
		return nil, err
	}
	if err := checkItemScope(actor, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateProduct adds an item to the employee's own store. Admins name the store.
func (s *service) CreateProduct(ctx context.Context, actor *models.User, input items.CreateItemInput) (*models.GroceryItem, error) {
	storeName, err := scope(actor)
	if err != nil {
		return nil, err
	}
	if storeName != "" {
		input.StoreName = storeName
	}
	return s.catalog.Create(ctx, input, actor.ID)
}

// UpdateStock applies a stock transition, records it on the item and appends
// it to the stock log in one transaction.
func (s *service) UpdateStock(ctx context.Context, actor *models.User, id uuid.UUID, input StockUpdateInput) (*models.GroceryItem, error) {
	if !input.StockStatus.IsValid() {
		return nil, pkgerrors.Validation("Invalid stock status").WithDetails(map[string]any{"validStatuses": enums.StockStatuses()})
	}
	if input.StockCount != nil && *input.StockCount < 0 {
		return nil, pkgerrors.Validation("Stock count cannot be negative")
	}

	now := s.now().UTC()
	var updated *models.GroceryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.items.WithTx(tx)
		item, err := items.Load(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := checkItemScope(actor, item); err != nil {
			return err
		}

		previousStatus, previousCount := item.StockStatus, item.StockCount
		item.ApplyStockStatus(input.StockStatus)
		if input.StockCount != nil {
			item.StockCount = *input.StockCount
		}
		reason := strings.TrimSpace(input.Reason)
		item.LastStockUpdate = datatypes.NewJSONType(&models.StockChange{
			UpdatedBy:      actor.ID,
			UpdatedAt:      now,
			PreviousStatus: previousStatus,
			NewStatus:      item.StockStatus,
			Reason:         reason,
		})
		if err := repo.SaveStock(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save stock")
		}
		entry := &models.StockUpdate{
			ItemID:         item.ID,
			UpdatedBy:      actor.ID,
			PreviousStatus: previousStatus,
			NewStatus:      item.StockStatus,
			PreviousCount:  previousCount,
			NewCount:       item.StockCount,
			Reason:         reason,
			CreatedAt:      now,
		}
		if err := repo.AppendStockUpdate(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock history")
		}
		updated = item
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"item_id": updated.ID.String(),
		"status":  updated.StockStatus.String(),
	}), "stock.updated")
	return updated, nil
}

func (s *service) History(ctx context.Context, actor *models.User, id uuid.UUID) (*History, error) {
	item, err := s.Product(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.items.StockHistory(ctx, item.ID, historyLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock history")
	}
	return &History{ItemID: item.ID, LastUpdate: item.LastStockUpdate.Data(), History: entries}, nil
}

func (s *service) Profile(ctx context.Context, actor *models.User) (*Profile, error) {
	if actor == nil {
		return nil, pkgerrors.Unauthorized("Authentication required")
	}
	out := &Profile{Employee: *users.FromModel(actor)}

	details := actor.Employee()
	if details == nil {
		return out, nil
	}
	var (
		store *models.Store
		err   error
	)
	switch {
	case details.StoreID != nil:
		store, err = s.stores.FindByID(ctx, *details.StoreID)
	case details.StoreName != "":
		store, err = s.stores.FindByName(ctx, details.StoreName)
	default:
		return out, nil
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	out.Store = stores.FromModel(store)
	return out, nil
}

func (s *service) Stats(ctx context.Context, actor *models.User) (*Stats, error) {
	storeName, err := scope(actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.items.CountByStockStatus(ctx, storeName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock")
	}
	out := &Stats{Store: storeName, ByStatus: counts}
	for _, n := range counts {
		out.Total += n
	}
	return out, nil
}
