package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. Role is a
// hint only; middleware re-reads it from the user record.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"userId"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// ExpiresIn returns the remaining lifetime relative to now, never negative.
func (c *AccessTokenClaims) ExpiresIn(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	if remaining := c.ExpiresAt.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}
