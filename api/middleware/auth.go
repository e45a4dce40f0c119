package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/api/responses"
	pkgAuth "github.com/grocerease/grocerease-backend/pkg/auth"
	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

const (
	msgNoToken      = "No token provided"
	msgInvalidToken = "Invalid token"
	msgTokenExpired = "Token expired"
	msgUserGone     = "User no longer exists"
)

// UserLoader fetches the account a token was issued to.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the bearer token, rejects revoked tokens and loads the user.
// The role placed on the context comes from the user record, not the token.
func Auth(cfg config.JWTConfig, users UserLoader, revocations pkgAuth.RevocationStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.Unauthorized(msgNoToken))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				if pkgAuth.IsExpired(err) {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgTokenExpired))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken))
				return
			}

			if revocations != nil && claims.ID != "" {
				revoked, err := revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check token revocation"))
					return
				}
				if revoked {
					responses.WriteError(ctx, logg, w, pkgerrors.Unauthorized(msgInvalidToken))
					return
				}
			}

			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(ctx, logg, w, pkgerrors.Unauthorized(msgUserGone))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user"))
				return
			}

			ctx = WithUser(ctx, user)
			ctx = context.WithValue(ctx, ctxClaims, claims)
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
				ctx = logg.WithActorRole(ctx, user.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}
