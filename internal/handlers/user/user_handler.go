// internal/handlers/user/user_handler.go
package user

import (
	"errors"
	"net/http"
	"strconv"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"
	"authguard-service/internal/pkg/response"
	authUsecase "authguard-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewUserHandler(authService *authUsecase.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		logger:      logger,
	}
}

// GetByID returns a user's credential info with active sessions
func (h *UserHandler) GetByID(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	info, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to fetch user", xerrors.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, "user retrieved", info)
}

// GetByEmail returns a user's credential info looked up by email
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "email query parameter is required", xerrors.ErrBadRequest)
		return
	}

	info, err := h.authService.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to fetch user", xerrors.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, "user retrieved", info)
}

// ChangeRoles replaces a user's role set (admin only)
func (h *UserHandler) ChangeRoles(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	var req auth.ChangeRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	info, err := h.authService.ChangeRoles(c.Request.Context(), userID, req.Roles)
	if err != nil {
		h.logger.Warn("role change failed",
			zap.Int64("user_id", userID),
			zap.Strings("roles", req.Roles),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, xerrors.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, xerrors.ErrRolesNotFound):
			response.Error(c, http.StatusBadRequest, "unknown roles", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to change roles", xerrors.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, "roles updated", info)
}
