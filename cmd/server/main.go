package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/FiveXSeven/synergies/internal/auth"
	"github.com/FiveXSeven/synergies/internal/cache"
	"github.com/FiveXSeven/synergies/internal/config"
	"github.com/FiveXSeven/synergies/internal/db"
	"github.com/FiveXSeven/synergies/internal/handler"
	"github.com/FiveXSeven/synergies/internal/middleware"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/repository"
	"github.com/FiveXSeven/synergies/internal/router"
	"github.com/FiveXSeven/synergies/internal/sanitize"
	"github.com/FiveXSeven/synergies/internal/service"
	"github.com/FiveXSeven/synergies/internal/upload"
)

// @title Synergies Publication API
// @version 1.0
// @description Publication platform API: reportages and agro-echos with PIN-based authentication, uploads and comments.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token (legacy transport; cookie mode is the default).
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Publication{},
		&model.Comment{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	uploads, err := upload.NewValidator(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	pubRepo := repository.NewPublicationRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	session := middleware.NewSession(jwtService, userRepo)

	sanitizer := sanitize.New()

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, sanitizer)
	pubService := service.NewPublicationService(pubRepo, uploads, sanitizer, cacheClient)
	commentService := service.NewCommentService(commentRepo, pubRepo, sanitizer)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.SessionTransport)
	pubHandler := handler.NewPublicationHandler(pubService, uploads)
	commentHandler := handler.NewCommentHandler(commentService)

	// Register routes
	router.Register(
		e,
		cfg,
		cacheClient,
		session,
		uploads,
		authHandler,
		pubHandler,
		commentHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
