// internal/domain/auth/dto.go
package auth

import "time"

// LoginRequest for user login
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	DeviceType string `json:"device_type"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}

// RegisterRequest for account registration (admin only)
type RegisterRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Roles    []string `json:"roles"`
}

// RefreshRequest carries the refresh token to exchange
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest invalidates the session keyed by the refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangeRolesRequest replaces a user's role set
type ChangeRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// RoleRequest creates a new role
type RoleRequest struct {
	Name string `json:"name" binding:"required"`
}

// UserInfo is the secured view of a credential returned to admins.
type UserInfo struct {
	ID       int64         `json:"id"`
	Email    string        `json:"email"`
	Roles    []string      `json:"roles"`
	Sessions []SessionInfo `json:"sessions,omitempty"`
}

// SessionInfo is the externally visible view of a session.
type SessionInfo struct {
	ID           string    `json:"id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	DeviceType   string    `json:"device_type"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}
