// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"authguard-service/internal/domain/auth"
	"authguard-service/internal/middleware"
	xerrors "authguard-service/internal/pkg/errors"
	"authguard-service/internal/pkg/response"
	authUsecase "authguard-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// statusFor maps service sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrAuthenticationFailed),
		errors.Is(err, xerrors.ErrInvalidCredentials):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, xerrors.ErrSessionNotFound),
		errors.Is(err, xerrors.ErrInvalidTokenType),
		errors.Is(err, xerrors.ErrMalformedToken),
		errors.Is(err, xerrors.ErrInvalidSignature),
		errors.Is(err, xerrors.ErrTokenExpired),
		errors.Is(err, xerrors.ErrRefreshTokenExpired),
		errors.Is(err, xerrors.ErrRolesNotFound),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrUserNotFound), errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrDuplicateEntry), errors.Is(err, xerrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes an error response, hiding internals behind a generic message.
func fail(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		response.Error(c, status, message, xerrors.ErrInternal)
		return
	}
	response.Error(c, status, message, err)
}

// ========== Login ==========

// Login authenticates an email/password pair and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	// Thread real transport metadata into the session
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	if req.DeviceType == "" {
		req.DeviceType = c.GetHeader("X-Device-Type")
	}

	pair, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		fail(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", pair)
}

// ========== Refresh ==========

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, "refresh failed", err)
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", pair)
}

// ========== Logout ==========

// Logout invalidates the session keyed by the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req auth.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		fail(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// LogoutAll invalidates every session of the authenticated user
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		fail(c, "logout all failed", err)
		return
	}

	response.Success(c, http.StatusOK, "all sessions logged out", nil)
}

// ========== Registration ==========

// Register creates a new credential (admin only)
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	info, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		fail(c, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", info)
}

// ========== Password ==========

// ChangePassword changes the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		fail(c, "password change failed", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed successfully", nil)
}
