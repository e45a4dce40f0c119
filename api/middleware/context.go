package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/grocerease/grocerease-backend/pkg/auth"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxClaims contextKey = "claims"
	ctxUser   contextKey = "user"
	ctxClient contextKey = "client_ip"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified token claims, used by logout.
func ClaimsFromContext(ctx context.Context) *pkgAuth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(ctxClaims).(*pkgAuth.AccessTokenClaims)
	return claims
}

// UserFromContext returns the full user record loaded by Auth.
func UserFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(ctxUser).(*models.User)
	return user
}

// WithUser seeds the context the way Auth does. Handlers under test use it
// to skip token minting.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, user.ID)
	ctx = context.WithValue(ctx, ctxRole, user.Role)
	return context.WithValue(ctx, ctxUser, user)
}
