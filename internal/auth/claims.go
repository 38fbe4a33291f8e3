package auth

import (
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Claims are the verified contents of an access token.
type Claims struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	TokenID   string      `json:"jti"`
	IssuedAt  time.Time   `json:"iat"`
	ExpiresAt time.Time   `json:"exp"`
}

// IsAdmin reports whether the token holder is an admin.
func (c *Claims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}
