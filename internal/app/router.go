// internal/app/router.go
package app

import (
	authHandler "authguard-service/internal/handlers/auth"
	roleHandler "authguard-service/internal/handlers/role"
	userHandler "authguard-service/internal/handlers/user"
	"authguard-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	RoleHandler    *roleHandler.RoleHandler
	UserHandler    *userHandler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
		authPublic.POST("/logout", h.AuthHandler.Logout)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
	}

	// ==================== ADMIN ROUTES ====================
	authAdmin := api.Group("/auth")
	authAdmin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		authAdmin.POST("/register", h.AuthHandler.Register)
	}

	users := api.Group("/users")
	users.Use(h.AuthMiddleware.AdminOnly()...)
	{
		users.GET("/:id", h.UserHandler.GetByID)
		users.GET("", h.UserHandler.GetByEmail) // ?email=xxx
		users.PUT("/:id/roles", h.UserHandler.ChangeRoles)
	}

	roles := api.Group("/roles")
	roles.Use(h.AuthMiddleware.AdminOnly()...)
	{
		roles.POST("", h.RoleHandler.Create)
		roles.GET("", h.RoleHandler.List)
	}
}
