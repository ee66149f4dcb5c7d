// internal/domain/auth/entity.go
package auth

import (
	"time"
)

// Credential represents a user account able to authenticate.
type Credential struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Roles        []Role    `json:"roles" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RoleNames returns the role names in stored order. The slice is the snapshot
// embedded into tokens at issuance time.
func (c *Credential) RoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role is a named authorization capability. The name is used verbatim as the
// authorization string carried in token claims.
type Role struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Session binds a refresh token to a credential and device. The refresh token
// is its natural key; rotation replaces the token value and expiry in place.
type Session struct {
	ID           string    `json:"id" db:"id"`
	CredentialID int64     `json:"credential_id" db:"credential_id"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	DeviceType   string    `json:"device_type" db:"device_type"`
	StartedAt    time.Time `json:"started_at" db:"started_at"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
}

// TokenPair is the ephemeral result of login and refresh. Never persisted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// DeviceInfo carries transport metadata captured at login.
type DeviceInfo struct {
	IPAddress  string
	UserAgent  string
	DeviceType string
}
