package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"stocker/internal/config"
	"stocker/internal/events"
	"stocker/internal/handlers"
	"stocker/internal/middleware"
	"stocker/internal/models"
	"stocker/internal/repository"
	"stocker/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Supplier{},
		&models.Product{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis (optional - dashboard caching degrades gracefully)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: invalid REDIS_URL: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("Warning: Redis unavailable: %v (continuing without cache)", err)
				redisClient = nil
			}
			cancel()
		}
	} else {
		log.Println("REDIS_URL not configured, dashboard caching disabled")
	}

	// Initialize NATS alert publisher (optional - graceful degradation)
	var alertPublisher *events.AlertPublisher
	if cfg.NATSURL != "" {
		alertPublisher, err = events.NewAlertPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS alert publisher: %v", err)
			log.Println("Continuing without alert publishing...")
		} else {
			log.Println("Connected to NATS JetStream for alert publishing")
			defer alertPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, alert publishing disabled")
	}

	// Initialize repository, services and handlers
	repo := repository.NewInventoryRepository(db)
	importer := services.NewImporter(repo, alertPublisher, logger)

	inventoryHandler := handlers.NewInventoryHandler(repo, alertPublisher, logger, cfg.DefaultPageSize, cfg.MaxPageSize)
	importHandler := handlers.NewImportHandler(importer, logger)
	reportHandler := handlers.NewReportHandler(repo, redisClient, alertPublisher, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	// Health check endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	api := router.Group("/api/v1")

	// Product routes
	products := api.Group("/products")
	{
		products.POST("", inventoryHandler.CreateProduct)
		products.GET("", inventoryHandler.ListProducts)

		// Import/Export (registered before /:id so the paths don't collide)
		products.GET("/export", inventoryHandler.ExportProducts)
		products.GET("/import/template", importHandler.GetProductImportTemplate)
		products.POST("/import", importHandler.ImportProducts)

		products.GET("/:id", inventoryHandler.GetProduct)
		products.PUT("/:id", inventoryHandler.UpdateProduct)
		products.DELETE("/:id", inventoryHandler.DeleteProduct)
	}

	// Category routes
	categories := api.Group("/categories")
	{
		categories.POST("", inventoryHandler.CreateCategory)
		categories.GET("", inventoryHandler.ListCategories)
		categories.GET("/:id", inventoryHandler.GetCategory)
		categories.PUT("/:id", inventoryHandler.UpdateCategory)
		categories.DELETE("/:id", inventoryHandler.DeleteCategory)
	}

	// Supplier routes
	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", inventoryHandler.CreateSupplier)
		suppliers.GET("", inventoryHandler.ListSuppliers)
		suppliers.GET("/:id", inventoryHandler.GetSupplier)
		suppliers.PUT("/:id", inventoryHandler.UpdateSupplier)
		suppliers.DELETE("/:id", inventoryHandler.DeleteSupplier)
	}

	// Report routes
	reports := api.Group("/reports")
	{
		reports.GET("/inventory", reportHandler.InventoryReport)
		reports.GET("/suppliers", reportHandler.SupplierReport)
	}

	// Dashboard and alerts
	api.GET("/dashboard", reportHandler.Dashboard)
	api.POST("/alerts/check", reportHandler.CheckLowStock)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Stocker service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down stocker...")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	log.Println("Stocker service stopped")
}
