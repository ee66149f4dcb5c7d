// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"authguard-service/internal/config"
	"authguard-service/internal/db"
	authHandler "authguard-service/internal/handlers/auth"
	roleHandler "authguard-service/internal/handlers/role"
	userHandler "authguard-service/internal/handlers/user"
	"authguard-service/internal/middleware"
	"authguard-service/internal/pkg/ratelimit"
	"authguard-service/internal/pkg/token"
	"authguard-service/internal/repository/postgres"
	authUsecase "authguard-service/internal/service/auth"
	roleUsecase "authguard-service/internal/service/role"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	reaper *authUsecase.Reaper
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] ✅ Connected successfully")

	// ----- Token codec -----
	codec, err := token.NewCodec(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}

	// ----- Rate limiter -----
	rateLimiter := ratelimit.NewRateLimiter(redisClient)

	// ----- Repositories -----
	credRepo := postgres.NewCredentialRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(
		credRepo,
		roleRepo,
		sessionRepo,
		codec,
		rateLimiter,
		logger,
		s.cfg.AccessTTL,
		s.cfg.RefreshTTL,
	)
	roleService := roleUsecase.NewRoleService(roleRepo, logger)

	// ----- Session reaper -----
	s.reaper = authUsecase.NewReaper(sessionRepo, s.cfg.ReapInterval, logger)
	s.reaper.Start(ctx)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	roleHandlerInst := roleHandler.NewRoleHandler(roleService, logger)
	userHandlerInst := userHandler.NewUserHandler(authService, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		RoleHandler:    roleHandlerInst,
		UserHandler:    userHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops background workers.
func (s *Server) Shutdown() {
	if s.reaper != nil {
		s.reaper.Stop()
	}
}
