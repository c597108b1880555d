package main

import (
	"log"
	"net/http"

	_ "shopfront/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shopfront/internal/auth"
	"shopfront/internal/cache"
	"shopfront/internal/config"
	"shopfront/internal/db"
	"shopfront/internal/handler"
	"shopfront/internal/model"
	"shopfront/internal/repository"
	"shopfront/internal/router"
	"shopfront/internal/service"
	"shopfront/internal/storage"
)

// @title Shopfront Admin API
// @version 1.0
// @description Storefront/admin REST API with role-gated user, category and product management and product image uploads.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	store, err := storage.NewLocal(cfg.StorageDir, cfg.StorageBaseURL)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	images := service.NewImageManager(store)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	productService := service.NewProductService(productRepo, categoryRepo, images, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	meHandler := handler.NewMeHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		authHandler,
		meHandler,
		userHandler,
		categoryHandler,
		productHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
