package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/enums"
)

// Identity is the verified result of a bearer credential: who is calling and
// which account they act for.
type Identity struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Role      enums.MemberRole
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID        `json:"user_id"`
	AccountID uuid.UUID        `json:"account_id"`
	Role      enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts validated claims into the request-scoped identity value.
func (c *AccessTokenClaims) Identity() Identity {
	return Identity{
		UserID:    c.UserID,
		AccountID: c.AccountID,
		Role:      c.Role,
	}
}
