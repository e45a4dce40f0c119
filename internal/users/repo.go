package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grocerease/grocerease-backend/internal/repo"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
)

var sortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
	"lastLogin": "last_login_at",
}

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Create(user).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var out []models.User
	if err := r.DB(ctx).Where("id IN ?", ids).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// EmailTaken reports whether another account already uses email.
func (r *Repository) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var count int64
	q := r.DB(ctx).Model(&models.User{}).Where("email = ?", models.NormalizeEmail(email))
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists every column of user.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Save(user).Error
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Delete removes the user row. Missing rows surface as gorm.ErrRecordNotFound.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of users matching q plus the total match count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.User, int64, error) {
	base := r.DB(ctx).Model(&models.User{})
	if q.Q != "" {
		pattern := repo.ContainsPattern(q.Q)
		base = base.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if q.Role != "" {
		base = base.Where("role = ?", q.Role)
	}

	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	desc := q.SortOrder == "desc" || (q.SortOrder == "" && column == "created_at")

	var out []models.User
	err := base.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order("id").
		Scopes(repo.Paginate(q.Page)).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountByRole returns the number of accounts per role.
func (r *Repository) CountByRole(ctx context.Context) (map[enums.Role]int64, error) {
	var rows []struct {
		Role  enums.Role
		Count int64
	}
	if err := r.DB(ctx).Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.Role]int64, len(enums.Roles()))
	for _, role := range enums.Roles() {
		out[role] = 0
	}
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

// CountCreatedSince counts accounts registered at or after since.
func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// DetachFromStore drops userID from the store's employee list, if the store still exists.
func (r *Repository) DetachFromStore(ctx context.Context, storeID, userID uuid.UUID) error {
	var store models.Store
	err := r.DB(ctx).First(&store, "id = ?", storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !store.RemoveEmployee(userID) {
		return nil
	}
	return r.DB(ctx).Model(&store).UpdateColumn("employee_ids", store.EmployeeIDs).Error
}
