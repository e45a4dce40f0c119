package employee

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/search"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/dbtest"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	conn     *gorm.DB
	items    *items.Repository
	store    *models.Store
	other    *models.Store
	employee *models.User
	admin    *models.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	itemRepo := items.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)
	tx := db.Wrap(conn)

	catalog, err := items.NewService(items.ServiceParams{Repo: itemRepo, Stores: storeRepo, Tx: tx})
	if err != nil {
		t.Fatalf("items service: %v", err)
	}
	searchSvc, err := search.NewService(search.ServiceParams{Repo: search.NewRepository(conn)})
	if err != nil {
		t.Fatalf("search service: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Items:   itemRepo,
		Catalog: catalog,
		Search:  searchSvc,
		Stores:  storeRepo,
		Tx:      tx,
		Clock:   func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	f := fixture{svc: svc, conn: conn, items: itemRepo}
	f.store = f.createStore(t, "Fresh Mart")
	f.other = f.createStore(t, "Corner Grocer")
	f.employee = &models.User{
		Name:  "Erin",
		Email: "erin@example.com",
		Role:  enums.RoleEmployee,
		EmployeeDetails: datatypes.NewJSONType(&models.EmployeeDetails{
			StoreID:   &f.store.ID,
			StoreName: f.store.Name,
			IsActive:  true,
		}),
		PasswordHash: "x",
	}
	f.admin = &models.User{Name: "Ada", Email: "ada@example.com", Role: enums.RoleAdmin, PasswordHash: "x"}
	for _, u := range []*models.User{f.employee, f.admin} {
		if err := conn.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	return f
}

func (f fixture) createStore(t *testing.T, name string) *models.Store {
	t.Helper()
	store := &models.Store{Name: name, Location: "Downtown", IsActive: true}
	if err := f.conn.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func (f fixture) createItem(t *testing.T, name string, store *models.Store) *models.GroceryItem {
	t.Helper()
	item := &models.GroceryItem{
		ItemName:    name,
		Price:       decimal.RequireFromString("1.99"),
		Store:       store.Snapshot(),
		Category:    enums.CategoryDairy,
		IsActive:    true,
		StockStatus: enums.StockStatusInStock,
		StockCount:  12,
	}
	if err := f.items.Create(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func (f fixture) reload(t *testing.T, id uuid.UUID) *models.GroceryItem {
	t.Helper()
	item, err := f.items.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return item
}

func TestUpdateStockDiscontinuedDeactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	milk := f.createItem(t, "Milk", f.store)

	zero := 0
	updated, err := f.svc.UpdateStock(ctx, f.employee, milk.ID, StockUpdateInput{
		StockStatus: enums.StockStatusDiscontinued,
		StockCount:  &zero,
		Reason:      " supplier stopped ",
	})
	if err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected discontinued item to be inactive")
	}

	got := f.reload(t, milk.ID)
	if got.IsActive || got.StockStatus != enums.StockStatusDiscontinued || got.StockCount != 0 {
		t.Fatalf("unexpected persisted item active=%v status=%s count=%d", got.IsActive, got.StockStatus, got.StockCount)
	}
	last := got.LastStockUpdate.Data()
	if last == nil || last.PreviousStatus != enums.StockStatusInStock || last.UpdatedBy != f.employee.ID || last.Reason != "supplier stopped" {
		t.Fatalf("unexpected last stock update %+v", last)
	}

	history, err := f.svc.History(ctx, f.employee, milk.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.History) != 1 || history.History[0].PreviousCount != 12 || history.History[0].NewCount != 0 {
		t.Fatalf("unexpected history %+v", history.History)
	}
}

func TestUpdateStockInStockReactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	milk := f.createItem(t, "Milk", f.store)

	if _, err := f.svc.UpdateStock(ctx, f.employee, milk.ID, StockUpdateInput{StockStatus: enums.StockStatusDiscontinued}); err != nil {
		t.Fatalf("discontinue: %v", err)
	}
	if _, err := f.svc.UpdateStock(ctx, f.employee, milk.ID, StockUpdateInput{StockStatus: enums.StockStatusInStock}); err != nil {
		t.Fatalf("restock: %v", err)
	}
	got := f.reload(t, milk.ID)
	if !got.IsActive || got.StockStatus != enums.StockStatusInStock || got.StockCount != 12 {
		t.Fatalf("expected active in-stock item with count kept, got active=%v status=%s count=%d", got.IsActive, got.StockStatus, got.StockCount)
	}

	history, _ := f.svc.History(ctx, f.employee, milk.ID)
	if len(history.History) != 2 {
		t.Fatalf("expected two history entries, got %d", len(history.History))
	}
}

func TestUpdateStockOtherStoreForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bread := f.createItem(t, "Bread", f.other)

	_, err := f.svc.UpdateStock(ctx, f.employee, bread.ID, StockUpdateInput{StockStatus: enums.StockStatusOutOfStock})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	got := f.reload(t, bread.ID)
	if got.StockStatus != enums.StockStatusInStock || !got.IsActive || got.LastStockUpdate.Data() != nil {
		t.Fatalf("expected item unchanged, got status=%s", got.StockStatus)
	}
	history, _ := f.items.StockHistory(ctx, bread.ID, 0)
	if len(history) != 0 {
		t.Fatalf("expected no history, got %d", len(history))
	}

	if _, err := f.svc.UpdateStock(ctx, f.admin, bread.ID, StockUpdateInput{StockStatus: enums.StockStatusOutOfStock}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestUpdateStockValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	milk := f.createItem(t, "Milk", f.store)

	if _, err := f.svc.UpdateStock(ctx, f.employee, milk.ID, StockUpdateInput{StockStatus: "sold-out"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.UpdateStock(ctx, f.employee, uuid.New(), StockUpdateInput{StockStatus: enums.StockStatusLowStock}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	storeless := &models.User{ID: uuid.New(), Role: enums.RoleEmployee}
	if _, err := f.svc.UpdateStock(ctx, storeless, milk.ID, StockUpdateInput{StockStatus: enums.StockStatusLowStock}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for employee without store, got %v", err)
	}
}

func TestProductsScopedToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createItem(t, "Milk", f.store)
	f.createItem(t, "Butter", f.store)
	f.createItem(t, "Bread", f.other)

	page, err := f.svc.Products(ctx, f.employee, search.Params{Stores: []string{"Corner Grocer"}})
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(page.Items) != 2 || page.Pagination.TotalItems != 2 {
		t.Fatalf("expected only own store items, got %d", len(page.Items))
	}
	for _, item := range page.Items {
		if item.Store.Name != "Fresh Mart" {
			t.Fatalf("leaked item from %s", item.Store.Name)
		}
	}

	all, err := f.svc.Products(ctx, f.admin, search.Params{})
	if err != nil {
		t.Fatalf("admin products: %v", err)
	}
	if len(all.Items) != 3 {
		t.Fatalf("expected admin to see every store, got %d", len(all.Items))
	}

	capped, err := f.svc.Products(ctx, f.employee, search.Params{Limit: "500", MinPrice: "abc"})
	if err != nil {
		t.Fatalf("expected oversized limit and bad price to be tolerated: %v", err)
	}
	if capped.Pagination.ItemsPerPage != 100 {
		t.Fatalf("expected limit capped at 100, got %d", capped.Pagination.ItemsPerPage)
	}
	if _, err := f.svc.Products(ctx, f.employee, search.Params{Page: "0"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProductAndCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bread := f.createItem(t, "Bread", f.other)

	if _, err := f.svc.Product(ctx, f.employee, bread.ID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	created, err := f.svc.CreateProduct(ctx, f.employee, items.CreateItemInput{
		ItemName:  "Yogurt",
		Price:     decimal.RequireFromString("0.99"),
		StoreName: "Corner Grocer",
		Category:  enums.CategoryDairy,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.Store.Name != "Fresh Mart" || created.CreatedBy == nil || *created.CreatedBy != f.employee.ID {
		t.Fatalf("expected item in the employee's store, got %+v", created.Store)
	}
}

func TestProfileAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	milk := f.createItem(t, "Milk", f.store)
	f.createItem(t, "Bread", f.other)
	if _, err := f.svc.UpdateStock(ctx, f.employee, milk.ID, StockUpdateInput{StockStatus: enums.StockStatusLowStock}); err != nil {
		t.Fatalf("update: %v", err)
	}

	profile, err := f.svc.Profile(ctx, f.employee)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Store == nil || profile.Store.ID != f.store.ID {
		t.Fatalf("expected assigned store, got %+v", profile.Store)
	}

	stats, err := f.svc.Stats(ctx, f.employee)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.ByStatus[enums.StockStatusLowStock] != 1 || stats.Store != "Fresh Mart" {
		t.Fatalf("unexpected stats %+v", stats)
	}

	adminStats, err := f.svc.Stats(ctx, f.admin)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if adminStats.Total != 2 {
		t.Fatalf("expected admin stats across stores, got %+v", adminStats)
	}
}
