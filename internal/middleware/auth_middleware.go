// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"authguard-service/internal/pkg/response"
	authUsecase "authguard-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *authUsecase.AuthService
}

func NewAuthMiddleware(authService *authUsecase.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth is the base authentication middleware that validates access tokens
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := extractToken(c)
		if tok == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.ValidateAccessToken(c.Request.Context(), tok)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		// Set user context
		c.Set("user_id", claims.UserID)
		c.Set("subject", claims.Subject)
		c.Set("roles", claims.Roles)

		c.Next()
	}
}

// RequireRole requires the user to hold at least one of the given roles.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := GetRoles(c)
		if len(userRoles) == 0 {
			response.Error(c, http.StatusForbidden, "no roles found - authentication required", nil)
			return
		}

		hasRole := false
		for _, userRole := range userRoles {
			for _, requiredRole := range roles {
				if userRole == requiredRole {
					hasRole = true
					break
				}
			}
			if hasRole {
				break
			}
		}

		if !hasRole {
			err := errors.New("user does not have required role")
			response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
				"required_roles": roles,
				"user_roles":     userRoles,
			})
			return
		}

		c.Next()
	}
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireRole)
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole("ADMIN"),
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return ""
}
