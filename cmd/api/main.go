package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/server"
	"github.com/platefeed/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Environment)

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to connect to Redis: %v", err)
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("failed to initialize S3: %v", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	imageService := service.NewImageService(s3Config, logger)
	userService := service.NewUserService(db, imageService)
	followService := service.NewFollowService(db)
	recipeService := service.NewRecipeService(db)
	interactionService := service.NewInteractionService(db)
	catalogService := service.NewCatalogService(db)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     120,
		KeyPrefix: "ratelimit",
	})

	engine := router.New(router.Options{
		Auth:         api.NewAuthHandler(authService),
		Users:        api.NewUserHandler(userService, followService, recipeService, authService),
		Catalog:      api.NewCatalogHandler(catalogService),
		Recipes:      api.NewRecipeHandler(recipeService, interactionService, followService, imageService, authService, cfg.BaseURL),
		Interactions: api.NewInteractionHandler(interactionService, authService),
		RateLimiter:  rateLimiter,
		Logger:       logger,
	})

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatalf("server error: %v", err)
		}
	case sig := <-quit:
		logger.WithFields(logrus.Fields{"signal": sig.String()}).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}

func newLogger(env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
