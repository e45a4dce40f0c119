package middleware

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/api/responses"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

// RequireAdmin lets only admins through. Mount after Auth.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != enums.RoleAdmin {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden("Admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireEmployee lets employees and admins through and refreshes the full
// user record on the context for store scoping.
func RequireEmployee(users UserLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !RoleFromContext(ctx).CanManageStock() {
				responses.WriteError(ctx, logg, w, pkgerrors.Forbidden("Employee access required"))
				return
			}

			user, err := users.FindByID(ctx, UserIDFromContext(ctx))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(ctx, logg, w, pkgerrors.NotFound("Employee not found"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load employee"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}
