package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/citypath/service-routing/internal/application"
	"github.com/citypath/service-routing/internal/cache"
	"github.com/citypath/service-routing/internal/config"
	routeDomain "github.com/citypath/service-routing/internal/domain/route"
	"github.com/citypath/service-routing/internal/events"
	"github.com/citypath/service-routing/internal/handler"
	"github.com/citypath/service-routing/internal/logger"
	"github.com/citypath/service-routing/internal/middleware"
	"github.com/citypath/service-routing/internal/provider"
	"github.com/citypath/service-routing/internal/repository"
)

const (
	serviceName = "service-routing"
	version     = "0.1.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-routing",
		zap.String("port", cfg.Port),
		zap.String("overpass_url", cfg.Routing.OverpassURL),
	)

	// Connect to database (optional: route history only)
	var db *gorm.DB
	var historyRepo routeDomain.HistoryRepository
	if cfg.DB.Enabled {
		db, err = gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.RouteRecordModel{}); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		}
		historyRepo = repository.NewGormRouteHistoryRepository(db)
	} else {
		log.Info("route history disabled (no database configured)")
	}

	// Initialize Kafka publisher (optional)
	var publisher *events.Publisher
	if cfg.Kafka.Enabled() {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer func() { _ = publisher.Close() }()
	} else {
		log.Info("event publishing disabled (no kafka brokers configured)")
	}

	// Initialize graph cache and provider
	graphCache, err := cache.NewGraphCache(cfg.Cache.Dir, cfg.Cache.TTL, log)
	if err != nil {
		log.Fatal("failed to initialize graph cache", zap.Error(err))
	}
	graphProvider := provider.NewOverpassProvider(cfg.Routing, graphCache, log)

	// Initialize application service
	routingService := application.NewRoutingService(
		graphProvider,
		historyRepo,
		publisher,
		cfg.Routing,
		log,
	)

	// Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(routingService)
	healthHandler := handler.NewHealthHandler(db, serviceName, version, cfg.AppEnv)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register routes
	healthHandler.RegisterRoutes(router)
	routeHandler.RegisterRoutes(&router.RouterGroup)

	// Map UI
	router.Static("/static", "./static")
	router.GET("/map", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-routing...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-routing stopped")
}
