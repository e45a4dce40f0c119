package admin

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/reports"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/internal/users"
	"github.com/grocerease/grocerease-backend/pkg/db/dbtest"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
)

func TestStatsAggregatesAcrossDomains(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()

	for i, role := range []enums.Role{enums.RoleUser, enums.RoleUser, enums.RoleEmployee, enums.RoleAdmin} {
		u := &models.User{Name: "u", Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
		require.NoError(t, conn.Create(u).Error, "user %d", i)
	}
	require.NoError(t, conn.Create(&models.Store{Name: "Open", Location: "A", IsActive: true}).Error)
	require.NoError(t, conn.Create(&models.Store{Name: "Closed", Location: "B", IsActive: false}).Error)

	itemRepo := items.NewRepository(conn)
	deal := &models.GroceryItem{ItemName: "Cheese", Price: decimal.NewFromInt(5), Promotion: "2 for 1", Category: enums.CategoryDairy, IsActive: true, StockStatus: enums.StockStatusInStock}
	gone := &models.GroceryItem{ItemName: "Old", Price: decimal.NewFromInt(1), Category: enums.CategoryOther, IsActive: false, StockStatus: enums.StockStatusDiscontinued}
	require.NoError(t, itemRepo.Create(ctx, deal))
	require.NoError(t, itemRepo.Create(ctx, gone))

	reportRepo := reports.NewRepository(conn)
	require.NoError(t, reportRepo.Create(ctx, &models.Report{ItemID: deal.ID, UserID: uuid.New(), Reason: enums.ReportReasonOther}))

	svc, err := NewService(ServiceParams{
		Users:   users.NewRepository(conn),
		Items:   itemRepo,
		Reports: reportRepo,
		Stores:  stores.NewRepository(conn),
		Clock:   time.Now,
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Users.Total)
	require.Equal(t, int64(2), stats.Users.ByRole[enums.RoleUser])
	require.Equal(t, int64(4), stats.Users.NewUsers)
	require.Equal(t, items.Counts{Total: 2, Active: 1, Inactive: 1, OnDeal: 1}, stats.Items)
	require.Equal(t, int64(1), stats.Reports.Total)
	require.Equal(t, int64(1), stats.Reports.ByStatus[enums.ReportStatusPending])
	require.Equal(t, int64(1), stats.ActiveStores)
}

func TestNewServiceRequiresRepositories(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
