package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/internal/users"
	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/security"
)

// Summary counts the rows a run inserted.
type Summary struct {
	Stores int
	Users  int
	Items  int
}

// Seeder writes a seed File. Records that already exist are left alone.
type Seeder struct {
	tx       db.Transactor
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

func NewSeeder(conn *gorm.DB, password config.PasswordConfig, logg *logger.Logger) *Seeder {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Seeder{tx: db.Wrap(conn), password: password, logg: logg, now: time.Now}
}

// Reset removes every row the seeder can create.
func (s *Seeder) Reset(ctx context.Context) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.GroceryListItem{},
			&models.GroceryList{},
			&models.Report{},
			&models.StockUpdate{},
			&models.GroceryItem{},
			&models.User{},
			&models.Store{},
		} {
			if err := tx.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("reset %T: %w", model, err)
			}
		}
		return nil
	})
}

// Apply inserts stores, then users, then items in one transaction.
func (s *Seeder) Apply(ctx context.Context, f *File) (Summary, error) {
	var sum Summary
	now := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		storeRepo := stores.NewRepository(tx)
		userRepo := users.NewRepository(tx)
		itemRepo := items.NewRepository(tx)

		byName := map[string]*models.Store{}
		for _, in := range f.Stores {
			store, created, err := s.store(ctx, storeRepo, in)
			if err != nil {
				return err
			}
			byName[store.Name] = store
			if created {
				sum.Stores++
			}
		}

		for _, in := range f.Users {
			created, err := s.user(ctx, userRepo, storeRepo, byName, in)
			if err != nil {
				return err
			}
			if created {
				sum.Users++
			}
		}

		for _, in := range f.Items {
			created, err := s.item(ctx, tx, itemRepo, byName[in.Store], in, now)
			if err != nil {
				return err
			}
			if created {
				sum.Items++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"stores": sum.Stores,
		"users":  sum.Users,
		"items":  sum.Items,
	}), "seed.applied")
	return sum, nil
}

func (s *Seeder) store(ctx context.Context, repo *stores.Repository, in Store) (*models.Store, bool, error) {
	existing, err := repo.FindByName(ctx, in.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find store %q: %w", in.Name, err)
	}

	closed := map[string]bool{}
	for _, day := range in.Closed {
		closed[strings.ToLower(day)] = true
	}
	day := func(name string) models.DayHours {
		if closed[name] {
			return models.DayHours{Closed: true}
		}
		return models.DayHours{Open: in.Open, Close: in.Close}
	}
	store := &models.Store{
		Name:     in.Name,
		Location: in.Location,
		Address: datatypes.NewJSONType(models.Address{
			Street: in.Street, City: in.City, State: in.State, ZipCode: in.ZipCode,
		}),
		Contact: datatypes.NewJSONType(models.Contact{Phone: in.Phone, Email: in.Email}),
		OperatingHours: datatypes.NewJSONType(models.OperatingHours{
			Monday:    day("monday"),
			Tuesday:   day("tuesday"),
			Wednesday: day("wednesday"),
			Thursday:  day("thursday"),
			Friday:    day("friday"),
			Saturday:  day("saturday"),
			Sunday:    day("sunday"),
		}),
		IsActive: !in.Inactive,
	}
	if err := repo.Create(ctx, store); err != nil {
		return nil, false, fmt.Errorf("create store %q: %w", in.Name, err)
	}
	return store, true, nil
}

func (s *Seeder) user(ctx context.Context, repo *users.Repository, storeRepo *stores.Repository, byName map[string]*models.Store, in User) (bool, error) {
	email := models.NormalizeEmail(in.Email)
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find user %q: %w", email, err)
	}

	hash, err := security.HashPassword(in.Password, s.password)
	if err != nil {
		return false, fmt.Errorf("hash password for %q: %w", email, err)
	}
	role := enums.RoleUser
	if in.Role != "" {
		role = enums.Role(in.Role)
	}
	user := &models.User{Name: in.Name, Email: email, PasswordHash: hash, Role: role}

	store := byName[in.Store]
	if store != nil {
		start := s.now().UTC()
		user.EmployeeDetails = datatypes.NewJSONType(&models.EmployeeDetails{
			StoreID:       &store.ID,
			StoreName:     store.Name,
			StoreLocation: store.Location,
			EmployeeID:    in.EmployeeID,
			Department:    in.Department,
			StartDate:     &start,
			IsActive:      true,
		})
	}
	if err := repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create user %q: %w", email, err)
	}
	if store != nil && store.AddEmployee(user.ID) {
		if err := storeRepo.Save(ctx, store); err != nil {
			return false, fmt.Errorf("attach %q to store %q: %w", email, store.Name, err)
		}
	}
	return true, nil
}

func (s *Seeder) item(ctx context.Context, tx *gorm.DB, repo *items.Repository, store *models.Store, in Item, now time.Time) (bool, error) {
	if store == nil {
		return false, fmt.Errorf("item %q: unknown store %q", in.Name, in.Store)
	}
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.GroceryItem{}).
		Where("item_name = ? AND store_name = ?", in.Name, store.Name).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("find item %q: %w", in.Name, err)
	}
	if count > 0 {
		return false, nil
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return false, fmt.Errorf("item %q price: %w", in.Name, err)
	}
	input := items.CreateItemInput{
		ItemName:    in.Name,
		Price:       price,
		Promotion:   in.Promotion,
		Image:       models.Image{URL: in.ImageURL, Alt: in.Name},
		Unit:        enums.UnitEach,
		Category:    enums.Category(in.Category),
		StockStatus: enums.StockStatusInStock,
		StockCount:  in.StockCount,
	}
	if in.OriginalPrice != "" {
		original, err := decimal.NewFromString(in.OriginalPrice)
		if err != nil {
			return false, fmt.Errorf("item %q original price: %w", in.Name, err)
		}
		input.OriginalPrice = &original
	}
	if in.Quantity != "" {
		quantity, err := decimal.NewFromString(in.Quantity)
		if err != nil {
			return false, fmt.Errorf("item %q quantity: %w", in.Name, err)
		}
		input.Quantity = quantity
	}
	if in.Unit != "" {
		input.Unit = enums.Unit(in.Unit)
	}
	if in.StockStatus != "" {
		input.StockStatus = enums.StockStatus(in.StockStatus)
	}
	if in.DealDays > 0 {
		expires := now.AddDate(0, 0, in.DealDays)
		input.DealExpiresAt = &expires
	}

	if err := repo.Create(ctx, input.ToModel(store, uuid.Nil)); err != nil {
		return false, fmt.Errorf("create item %q: %w", in.Name, err)
	}
	return true, nil
}
