package items

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/dbtest"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Stores: stores.NewRepository(conn),
		Tx:     db.Wrap(conn),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func createStore(t *testing.T, conn *gorm.DB, name string, active bool) *models.Store {
	t.Helper()
	store := &models.Store{Name: name, Location: "Downtown", IsActive: active}
	if err := conn.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestCreateSnapshotsStore(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	createStore(t, conn, "Fresh Mart", true)
	author := uuid.New()

	item, err := svc.Create(ctx, CreateItemInput{
		ItemName:  "Apples",
		Price:     decimal.RequireFromString("3.00"),
		StoreName: "Fresh Mart",
		Unit:      enums.UnitLb,
		Quantity:  decimal.RequireFromString("2"),
		Category:  enums.CategoryProduce,
	}, author)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Store.Name != "Fresh Mart" || item.Store.Location != "Downtown" {
		t.Fatalf("expected store snapshot, got %+v", item.Store)
	}
	if !item.IsActive || item.StockStatus != enums.StockStatusInStock {
		t.Fatalf("expected active in-stock item, got active=%v status=%s", item.IsActive, item.StockStatus)
	}
	if !item.UnitDetails.PricePerUnit.Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("expected price per unit 1.50, got %s", item.UnitDetails.PricePerUnit)
	}
	if item.CreatedBy == nil || *item.CreatedBy != author {
		t.Fatalf("expected author recorded")
	}

	got, err := svc.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ItemName != "Apples" {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	createStore(t, conn, "Closed", false)

	cases := []struct {
		name  string
		input CreateItemInput
		code  pkgerrors.Code
	}{
		{"missing name", CreateItemInput{StoreName: "Closed", Category: enums.CategoryDairy}, pkgerrors.CodeValidation},
		{"negative price", CreateItemInput{ItemName: "Milk", StoreName: "Closed", Category: enums.CategoryDairy, Price: decimal.NewFromInt(-1)}, pkgerrors.CodeValidation},
		{"bad category", CreateItemInput{ItemName: "Milk", StoreName: "Closed", Category: "toys"}, pkgerrors.CodeValidation},
		{"unknown store", CreateItemInput{ItemName: "Milk", StoreName: "Nowhere", Category: enums.CategoryDairy}, pkgerrors.CodeNotFound},
		{"inactive store", CreateItemInput{ItemName: "Milk", StoreName: "Closed", Category: enums.CategoryDairy}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.input, uuid.Nil); !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestListAllAndDelete(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	createStore(t, conn, "Fresh Mart", true)

	inactive := false
	first, err := svc.Create(ctx, CreateItemInput{ItemName: "Milk", StoreName: "Fresh Mart", Category: enums.CategoryDairy, Price: decimal.NewFromInt(2)}, uuid.Nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateItemInput{ItemName: "Old Bread", StoreName: "Fresh Mart", Category: enums.CategoryBakery, IsActive: &inactive}, uuid.Nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected every item including inactive, got %d", len(all))
	}

	entry := &models.StockUpdate{ItemID: first.ID, UpdatedBy: uuid.New(), PreviousStatus: enums.StockStatusInStock, NewStatus: enums.StockStatusLowStock}
	if err := NewRepository(conn).AppendStockUpdate(ctx, entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, first.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	history, err := NewRepository(conn).StockHistory(ctx, first.ID, 0)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected stock history removed, got %d err=%v", len(history), err)
	}
	if err := svc.Delete(ctx, first.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCountByStockStatus(t *testing.T) {
	_, conn := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(conn)
	for _, seed := range []struct {
		store  string
		status enums.StockStatus
	}{
		{"A", enums.StockStatusInStock},
		{"A", enums.StockStatusLowStock},
		{"B", enums.StockStatusInStock},
	} {
		item := &models.GroceryItem{
			ItemName:    "x",
			Store:       models.StoreSnapshot{Name: seed.store, Location: "L"},
			Category:    enums.CategoryOther,
			StockStatus: seed.status,
			IsActive:    true,
		}
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	counts, err := repo.CountByStockStatus(ctx, "A")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[enums.StockStatusInStock] != 1 || counts[enums.StockStatusLowStock] != 1 || counts[enums.StockStatusDiscontinued] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
	all, _ := repo.CountByStockStatus(ctx, "")
	if all[enums.StockStatusInStock] != 2 {
		t.Fatalf("expected two in-stock items overall, got %v", all)
	}
}
