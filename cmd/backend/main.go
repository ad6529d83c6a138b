package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/config"
	"optimo-ai/internal/domain/services"
	"optimo-ai/internal/infrastructure/cache"
	"optimo-ai/internal/infrastructure/database"
	"optimo-ai/internal/interfaces/http/handlers"
	"optimo-ai/internal/interfaces/http/middleware"
	"optimo-ai/internal/llm"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is an accelerator, not a dependency: the service runs without it.
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	userRepo := database.NewUserRepository(db)
	keyRepo := database.NewAPIKeyRepository(db)
	usageRepo := database.NewUsageRepository(db)
	historyRepo := database.NewHistoryRepository(db)
	templateRepo := database.NewTemplateRepository(db)

	llmClient := llm.NewClient()

	subscriptionService := services.NewSubscriptionService(userRepo, redisClient, logger)
	keyService, err := services.NewAPIKeyService(keyRepo, cfg.Keys.EncryptionSecret, llmClient, logger)
	if err != nil {
		log.Fatalf("Failed to initialize key service: %v", err)
	}
	optimizationService := services.NewOptimizationService(
		subscriptionService, keyService, usageRepo, historyRepo, llmClient, redisClient, logger)
	paddleService, err := services.NewPaddleService(subscriptionService, cfg.Paddle.WebhookSecret, logger)
	if err != nil {
		log.Fatalf("Failed to initialize webhook service: %v", err)
	}

	handler := handlers.New(
		subscriptionService, keyService, optimizationService, paddleService,
		historyRepo, templateRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		checks := gin.H{"database": "up", "redis": "up"}

		if err := db.Health(); err != nil {
			status = "degraded"
			checks["database"] = "down"
		}
		if redisClient == nil {
			checks["redis"] = "disabled"
		} else if err := redisClient.Health(); err != nil {
			checks["redis"] = "down"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"service": "optimo-ai-backend",
			"checks":  checks,
			"time":    time.Now(),
		})
	})

	// Webhook deliveries are signed, not user-scoped, so they skip the
	// identity middleware.
	router.POST("/paddle-webhook", handler.PaddleWebhook)

	api := router.Group("/api")
	api.Use(middleware.RequireUserID())

	api.GET("/user-status", handler.UserStatus)
	api.POST("/optimize-prompt", handler.OptimizePrompt)
	api.GET("/history", handler.History)

	api.POST("/save-key", handler.SaveKey)
	api.GET("/keys", handler.ListKeys)
	api.POST("/test-key", handler.TestKey)

	api.POST("/templates", handler.CreateTemplate)
	api.GET("/templates", handler.ListTemplates)
	api.PUT("/templates/:id", handler.UpdateTemplate)
	api.DELETE("/templates/:id", handler.DeleteTemplate)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Backend stopped")
}
