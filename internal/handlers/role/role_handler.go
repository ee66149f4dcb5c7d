// internal/handlers/role/role_handler.go
package role

import (
	"errors"
	"net/http"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"
	"authguard-service/internal/pkg/response"
	roleUsecase "authguard-service/internal/service/role"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoleHandler struct {
	roleService *roleUsecase.RoleService
	logger      *zap.Logger
}

func NewRoleHandler(roleService *roleUsecase.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		logger:      logger,
	}
}

// Create adds a new role (admin only)
func (h *RoleHandler) Create(c *gin.Context) {
	var req auth.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.roleService.Create(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid role name", err)
		case errors.Is(err, xerrors.ErrDuplicateEntry):
			response.Error(c, http.StatusConflict, "role already exists", err)
		default:
			h.logger.Error("role creation failed", zap.String("name", req.Name), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to create role", xerrors.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, "role created", created)
}

// List returns all known roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("role listing failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list roles", xerrors.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, "roles retrieved", roles)
}
