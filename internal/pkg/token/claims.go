// internal/pkg/token/claims.go
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims represents the signed token claims. Roles is the snapshot of role
// names at issuance time, not a live reference.
type Claims struct {
	UserID    int64    `json:"user_id"`
	Roles     []string `json:"roles,omitempty"`
	TokenType string   `json:"type"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims contain a specific role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAccess reports whether the token was issued for API access.
func (c *Claims) IsAccess() bool {
	return c.TokenType == TypeAccess
}

// IsRefresh reports whether the token was issued for session refresh.
func (c *Claims) IsRefresh() bool {
	return c.TokenType == TypeRefresh
}
