// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// MustGetUserID gets the authenticated user ID from context or panics
func MustGetUserID(c *gin.Context) int64 {
	userID, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return userID
}

// GetUserID gets the authenticated user ID from context
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int64)
	return id, ok
}

// GetSubject gets the authenticated subject (email) from context
func GetSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get("subject")
	if !exists {
		return "", false
	}

	s, ok := subject.(string)
	return s, ok
}

// GetRoles gets user roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get("roles")
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

// HasRole checks if the authenticated user holds a role
func HasRole(c *gin.Context, role string) bool {
	for _, r := range GetRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	return HasRole(c, "ADMIN")
}
