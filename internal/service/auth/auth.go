// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"
	"authguard-service/internal/pkg/token"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bearerTokenType = "Bearer"

// DefaultRoleName is assigned to credentials registered without explicit roles.
const DefaultRoleName = "USER"

// CredentialStore is the minimal credential repository needed by the service.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*auth.Credential, error)
	FindByID(ctx context.Context, id int64) (*auth.Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, cred *auth.Credential) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ReplaceRoles(ctx context.Context, id int64, roles []auth.Role) error
}

// RoleStore resolves role names to role rows.
type RoleStore interface {
	FindByNames(ctx context.Context, names []string) ([]auth.Role, error)
}

// SessionRegistry is the persistent keyed store of active sessions. Rotation
// correctness rests entirely on UpdateRefreshToken being a compare-and-swap.
type SessionRegistry interface {
	Create(ctx context.Context, session *auth.Session) error
	FindByRefreshToken(ctx context.Context, refreshToken string) (*auth.Session, error)
	UpdateRefreshToken(ctx context.Context, oldToken, newToken string, expiresAt time.Time) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
	DeleteAllForUser(ctx context.Context, credentialID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListByCredential(ctx context.Context, credentialID int64) ([]auth.Session, error)
}

// LoginLimiter throttles login attempts. May be nil to disable limiting.
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// AuthService orchestrates login, logout, refresh rotation, and password and
// role changes over the credential store, session registry, and token codec.
type AuthService struct {
	creds      CredentialStore
	roles      RoleStore
	sessions   SessionRegistry
	codec      *token.Codec
	limiter    LoginLimiter
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(
	creds CredentialStore,
	roles RoleStore,
	sessions SessionRegistry,
	codec *token.Codec,
	limiter LoginLimiter,
	logger *zap.Logger,
	accessTTL, refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		creds:      creds,
		roles:      roles,
		sessions:   sessions,
		codec:      codec,
		limiter:    limiter,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// freshnessWindow is the grace period after issuance during which refresh
// reissues only the access token without rotating the refresh token.
func (s *AuthService) freshnessWindow() time.Duration {
	return 2 * s.accessTTL
}

// ========== Login ==========

// Login authenticates the email/password pair and opens a new session bound
// to the caller's device metadata.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.TokenPair, error) {
	if s.limiter != nil {
		allowed, remaining, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, req.Email)
		if err != nil {
			// Limiter trouble must not lock everyone out
			s.logger.Error("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.logger.Warn("login rate limited",
				zap.String("email", req.Email),
				zap.String("ip", req.IPAddress),
				zap.Int64("remaining", remaining),
			)
			return nil, xerrors.ErrRateLimited
		}
	}

	cred, err := s.creds.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			s.logger.Warn("login for unknown email", zap.String("email", req.Email))
			return nil, xerrors.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("password mismatch", zap.String("email", req.Email))
		return nil, xerrors.ErrInvalidCredentials
	}

	pair, err := s.mintPair(cred.Email, cred.ID, cred.RoleNames())
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &auth.Session{
		ID:           ulid.Make().String(),
		CredentialID: cred.ID,
		RefreshToken: pair.RefreshToken,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		DeviceType:   req.DeviceType,
		StartedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, req.Email); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", cred.ID),
		zap.String("email", cred.Email),
	)

	return pair, nil
}

// ========== Refresh ==========

// Refresh exchanges a refresh token for a new token pair. Inside the
// freshness window only the access token is reissued; past it the refresh
// token is rotated atomically, and concurrent rotation attempts on the same
// session yield exactly one winner.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, xerrors.ErrInvalidTokenType
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, xerrors.ErrMalformedToken
	}

	now := s.now()

	if now.Sub(claims.IssuedAt.Time) < s.freshnessWindow() {
		// Fresh path: the refresh token and session stay untouched.
		accessToken, err := s.codec.Encode(claims.Subject, claims.UserID, claims.Roles, token.TypeAccess, s.accessTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to mint access token: %w", err)
		}
		return &auth.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    bearerTokenType,
		}, nil
	}

	if now.After(claims.ExpiresAt.Time) {
		// Terminal: the session row persists until the reaper removes it.
		return nil, xerrors.ErrRefreshTokenExpired
	}

	// Rotation path. Subject and roles come from the token's own claims, not
	// a store read: role changes propagate only through natural reissue.
	pair, err := s.mintPair(claims.Subject, claims.UserID, claims.Roles)
	if err != nil {
		return nil, err
	}

	err = s.sessions.UpdateRefreshToken(ctx, refreshToken, pair.RefreshToken, now.Add(s.refreshTTL))
	if err != nil {
		if errors.Is(err, xerrors.ErrSessionNotFound) {
			// Lost the rotation race (or the session is gone); the caller
			// must re-authenticate.
			s.logger.Warn("refresh token rotation lost", zap.Int64("user_id", claims.UserID))
			return nil, xerrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	return pair, nil
}

// ========== Logout ==========

// Logout removes the session keyed by the refresh token. Logging out a token
// whose session is already gone is a no-op success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.sessions.DeleteByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, xerrors.ErrSessionNotFound) {
			s.logger.Debug("logout for already-removed session")
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// LogoutAll removes every session owned by the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	s.logger.Info("all sessions logged out", zap.Int64("user_id", userID))
	return nil
}

// ========== Registration ==========

// Register creates a new credential. Roles default to USER when none given.
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.UserInfo, error) {
	exists, err := s.creds.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, xerrors.ErrDuplicateEntry
	}

	roleNames := req.Roles
	if len(roleNames) == 0 {
		roleNames = []string{DefaultRoleName}
	}
	roles, err := s.roles.FindByNames(ctx, roleNames)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	if len(roles) == 0 {
		return nil, xerrors.ErrRolesNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &auth.Credential{
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", cred.ID),
		zap.String("email", cred.Email),
	)

	return userInfo(cred, nil), nil
}

// ========== Password & Roles ==========

// ChangePassword verifies the current password and persists a new hash.
// Existing sessions stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *auth.ChangePasswordRequest) error {
	cred, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("change-password mismatch", zap.Int64("user_id", userID))
		return xerrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.creds.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// ChangeRoles replaces the user's role set. Tokens already issued keep their
// old snapshot until refreshed.
func (s *AuthService) ChangeRoles(ctx context.Context, userID int64, roleNames []string) (*auth.UserInfo, error) {
	roles, err := s.roles.FindByNames(ctx, roleNames)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	if len(roles) == 0 {
		return nil, xerrors.ErrRolesNotFound
	}

	cred, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.creds.ReplaceRoles(ctx, userID, roles); err != nil {
		return nil, err
	}
	cred.Roles = roles

	s.logger.Info("roles changed",
		zap.Int64("user_id", userID),
		zap.Strings("roles", cred.RoleNames()),
	)

	return userInfo(cred, nil), nil
}

// ========== Token validation & lookups ==========

// ValidateAccessToken decodes an access token for the request path. Refresh
// tokens and expired tokens are rejected.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenString string) (*token.Claims, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAccess() {
		return nil, xerrors.ErrInvalidTokenType
	}
	if claims.ExpiresAt == nil || s.now().After(claims.ExpiresAt.Time) {
		return nil, xerrors.ErrTokenExpired
	}
	return claims, nil
}

// GetUserByID returns the secured view of a credential, with its sessions.
func (s *AuthService) GetUserByID(ctx context.Context, userID int64) (*auth.UserInfo, error) {
	cred, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByCredential(ctx, cred.ID)
	if err != nil {
		return nil, err
	}
	return userInfo(cred, sessions), nil
}

// GetUserByEmail returns the secured view of a credential, with its sessions.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByCredential(ctx, cred.ID)
	if err != nil {
		return nil, err
	}
	return userInfo(cred, sessions), nil
}

// ========== helpers ==========

func (s *AuthService) mintPair(email string, userID int64, roles []string) (*auth.TokenPair, error) {
	accessToken, err := s.codec.Encode(email, userID, roles, token.TypeAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}
	refreshToken, err := s.codec.Encode(email, userID, roles, token.TypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint refresh token: %w", err)
	}
	return &auth.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
	}, nil
}

func userInfo(cred *auth.Credential, sessions []auth.Session) *auth.UserInfo {
	info := &auth.UserInfo{
		ID:    cred.ID,
		Email: cred.Email,
		Roles: cred.RoleNames(),
	}
	for _, s := range sessions {
		info.Sessions = append(info.Sessions, auth.SessionInfo{
			ID:           s.ID,
			IPAddress:    s.IPAddress,
			UserAgent:    s.UserAgent,
			DeviceType:   s.DeviceType,
			StartedAt:    s.StartedAt,
			LastActivity: s.LastActivity,
			ExpiresAt:    s.ExpiresAt,
		})
	}
	return info
}
