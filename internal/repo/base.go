package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Conn returns the raw connection, for building a sibling repository on the same handle.
func (b Base) Conn() *gorm.DB {
	return b.db
}

// Paginate applies offset/limit from normalized params.
func Paginate(p pagination.Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Limit <= 0 {
			return db
		}
		return db.Offset(p.Skip).Limit(p.Limit)
	}
}

// ContainsPattern builds a LIKE pattern for case-insensitive substring matches,
// escaping the wildcard characters in term.
func ContainsPattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
