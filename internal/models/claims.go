package models

import (
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by bearer tokens issued by the auth service. Shops and
// admins are both users; Role decides which side of an order they act on.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Active bool      `json:"active"`
	jwt.RegisteredClaims
}

func (c *Claims) AccessRole() access.Role {
	return access.Role(c.Role)
}

// Principal returns nil when the token names a role the platform does not know.
func (c *Claims) Principal() *access.Principal {
	role := c.AccessRole()
	if !role.Valid() || c.UserID == uuid.Nil {
		return nil
	}

	return access.NewPrincipal(c.UserID, role)
}
