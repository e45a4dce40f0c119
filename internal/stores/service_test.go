package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/users"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/dbtest"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
)

type fixture struct {
	svc   Service
	conn  *gorm.DB
	users *users.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	userRepo := users.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:  NewRepository(conn),
		Users: userRepo,
		Tx:    db.Wrap(conn),
		Clock: func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return fixture{svc: svc, conn: conn, users: userRepo}
}

func (f fixture) user(t *testing.T, email string, role enums.Role) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateStoreInput{Name: "Fresh Mart", Location: "Downtown"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsActive || created.EmployeeCount != 0 {
		t.Fatalf("unexpected new store %+v", created)
	}

	_, err = f.svc.Create(ctx, CreateStoreInput{Name: "Fresh Mart", Location: "Uptown"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = f.svc.Create(ctx, CreateStoreInput{Name: " ", Location: "Uptown"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddEmployeeLinksBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store, err := f.svc.Create(ctx, CreateStoreInput{Name: "Fresh Mart", Location: "Downtown"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	shopper := f.user(t, "sam@example.com", enums.RoleUser)

	updated, err := f.svc.AddEmployee(ctx, store.ID, shopper.ID)
	if err != nil {
		t.Fatalf("add employee: %v", err)
	}
	if updated.EmployeeCount != 1 || updated.Employees[0] != shopper.ID {
		t.Fatalf("expected store to list employee, got %+v", updated.Employees)
	}

	reloaded, err := f.users.FindByID(ctx, shopper.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Role != enums.RoleEmployee {
		t.Fatalf("expected employee role, got %s", reloaded.Role)
	}
	details := reloaded.Employee()
	if details == nil || details.StoreID == nil || *details.StoreID != store.ID || details.StoreName != "Fresh Mart" {
		t.Fatalf("unexpected employee details %+v", details)
	}

	if _, err := f.svc.AddEmployee(ctx, store.ID, shopper.ID); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate assignment, got %v", err)
	}
	admin := f.user(t, "root@example.com", enums.RoleAdmin)
	if _, err := f.svc.AddEmployee(ctx, store.ID, admin.ID); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for admin, got %v", err)
	}
	if _, err := f.svc.AddEmployee(ctx, store.ID, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}

	employees, err := f.svc.Employees(ctx, store.ID)
	if err != nil {
		t.Fatalf("employees: %v", err)
	}
	if len(employees) != 1 || employees[0].ID != shopper.ID {
		t.Fatalf("unexpected employees %+v", employees)
	}
}

func TestAddEmployeeMovesFromPreviousStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, _ := f.svc.Create(ctx, CreateStoreInput{Name: "First", Location: "A"})
	second, _ := f.svc.Create(ctx, CreateStoreInput{Name: "Second", Location: "B"})
	worker := f.user(t, "w@example.com", enums.RoleUser)

	if _, err := f.svc.AddEmployee(ctx, first.ID, worker.ID); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := f.svc.AddEmployee(ctx, second.ID, worker.ID); err != nil {
		t.Fatalf("add second: %v", err)
	}

	got, err := f.svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if got.EmployeeCount != 0 {
		t.Fatalf("expected worker to leave the first store, got %+v", got.Employees)
	}
}

func TestUpdateRenamePropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store, _ := f.svc.Create(ctx, CreateStoreInput{Name: "Fresh Mart", Location: "Downtown"})
	worker := f.user(t, "w@example.com", enums.RoleUser)
	if _, err := f.svc.AddEmployee(ctx, store.ID, worker.ID); err != nil {
		t.Fatalf("add employee: %v", err)
	}

	item := &models.GroceryItem{
		ItemName:    "Apples",
		Price:       decimal.RequireFromString("2.50"),
		Store:       models.StoreSnapshot{Name: "Fresh Mart", Location: "Downtown"},
		UnitDetails: models.UnitDetails{Unit: enums.UnitLb, Quantity: decimal.NewFromInt(1)},
		Category:    enums.CategoryProduce,
		IsActive:    true,
	}
	if err := f.conn.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}

	name := "Fresh Mart Central"
	location := "Midtown"
	updated, err := f.svc.Update(ctx, store.ID, UpdateStoreInput{Name: &name, Location: &location})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected renamed store, got %q", updated.Name)
	}

	reloaded, err := f.users.FindByID(ctx, worker.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got := reloaded.StoreName(); got != name {
		t.Fatalf("expected employee store name %q, got %q", name, got)
	}

	var gotItem models.GroceryItem
	if err := f.conn.First(&gotItem, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if gotItem.Store.Name != name || gotItem.Store.Location != location {
		t.Fatalf("expected item snapshot to follow rename, got %+v", gotItem.Store)
	}
}

func TestUpdateRenameConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, _ := f.svc.Create(ctx, CreateStoreInput{Name: "First", Location: "A"})
	if _, err := f.svc.Create(ctx, CreateStoreInput{Name: "Second", Location: "B"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Second"
	if _, err := f.svc.Update(ctx, first.ID, UpdateStoreInput{Name: &name}); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := f.svc.Get(ctx, first.ID)
	if got.Name != "First" {
		t.Fatalf("expected name unchanged, got %q", got.Name)
	}
}

func TestDeleteSoftWhenStaffed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staffed, _ := f.svc.Create(ctx, CreateStoreInput{Name: "Staffed", Location: "A"})
	empty, _ := f.svc.Create(ctx, CreateStoreInput{Name: "Empty", Location: "B"})
	worker := f.user(t, "w@example.com", enums.RoleUser)
	if _, err := f.svc.AddEmployee(ctx, staffed.ID, worker.ID); err != nil {
		t.Fatalf("add employee: %v", err)
	}

	res, err := f.svc.Delete(ctx, staffed.ID)
	if err != nil {
		t.Fatalf("delete staffed: %v", err)
	}
	if !res.Deactivated {
		t.Fatalf("expected soft delete for staffed store")
	}
	got, err := f.svc.Get(ctx, staffed.ID)
	if err != nil || got.IsActive {
		t.Fatalf("expected store kept but inactive, got %+v err=%v", got, err)
	}

	res, err = f.svc.Delete(ctx, empty.ID)
	if err != nil {
		t.Fatalf("delete empty: %v", err)
	}
	if res.Deactivated {
		t.Fatalf("expected hard delete for empty store")
	}
	if _, err := f.svc.Get(ctx, empty.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after hard delete, got %v", err)
	}

	active, err := f.svc.List(ctx, false, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active stores, got %d", len(active))
	}
	all, err := f.svc.List(ctx, true, "staff")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected inactive store in full listing, got %d", len(all))
	}
}

func TestRemoveEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store, _ := f.svc.Create(ctx, CreateStoreInput{Name: "Fresh Mart", Location: "Downtown"})
	worker := f.user(t, "w@example.com", enums.RoleUser)
	if _, err := f.svc.AddEmployee(ctx, store.ID, worker.ID); err != nil {
		t.Fatalf("add employee: %v", err)
	}

	updated, err := f.svc.RemoveEmployee(ctx, store.ID, worker.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if updated.EmployeeCount != 0 {
		t.Fatalf("expected no employees, got %d", updated.EmployeeCount)
	}
	reloaded, _ := f.users.FindByID(ctx, worker.ID)
	if details := reloaded.Employee(); details == nil || details.StoreID != nil || details.IsActive {
		t.Fatalf("expected employee unlinked, got %+v", details)
	}

	if _, err := f.svc.RemoveEmployee(ctx, store.ID, worker.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}
