package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/pantry/backend/internal/application/catalog"
	inventoryapp "github.com/pantry/backend/internal/application/inventory"
	orderingapp "github.com/pantry/backend/internal/application/ordering"
	reportapp "github.com/pantry/backend/internal/application/report"
	"github.com/pantry/backend/internal/infrastructure/cache"
	"github.com/pantry/backend/internal/infrastructure/config"
	"github.com/pantry/backend/internal/infrastructure/event"
	"github.com/pantry/backend/internal/infrastructure/logger"
	"github.com/pantry/backend/internal/infrastructure/persistence"
	"github.com/pantry/backend/internal/infrastructure/scheduler"
	"github.com/pantry/backend/internal/interfaces/http/handler"
	"github.com/pantry/backend/internal/interfaces/http/middleware"
	"github.com/pantry/backend/internal/interfaces/http/router"
)

const maxBodySize = 1 << 20 // 1MB

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Pantry Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	ingredientRepo := persistence.NewGormIngredientRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	menuRepo := persistence.NewGormMenuRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Transaction scopes keep stock deduction and movement writes atomic
	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	orderScope := persistence.NewGormOrderTransactionScope(db.DB)

	// Initialize application services
	thresholds := inventoryapp.AlertThresholds{
		ExpiryWindow: time.Duration(cfg.Alerts.ExpiryWindowDays) * 24 * time.Hour,
		LowStock:     decimal.NewFromFloat(cfg.Alerts.LowStockLevel),
	}
	ingredientService := inventoryapp.NewIngredientService(ingredientRepo, movementRepo, stockScope, thresholds)
	menuService := catalogapp.NewMenuService(menuRepo, ingredientRepo)
	orderService := orderingapp.NewOrderService(orderRepo, orderScope)
	reportService := reportapp.NewReportService(ingredientRepo, movementRepo, thresholds.ExpiryWindow)

	// Initialize event bus and audit handler
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewStockAuditHandler(log))
	ingredientService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	// Idempotency store for duplicate order submissions
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Periodic write-off of expired stock
	cleanupScheduler := scheduler.NewCleanupScheduler(scheduler.DefaultConfig(), ingredientService, log)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start cleanup scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := cleanupScheduler.Stop(stopCtx); err != nil {
			log.Error("Error stopping cleanup scheduler", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	ingredientHandler := handler.NewIngredientHandler(ingredientService)
	menuHandler := handler.NewMenuHandler(menuService)
	orderHandler := handler.NewOrderHandler(orderService,
		middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, log))
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(maxBodySize))

	// Mount API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(ingredientHandler).
		Register(menuHandler).
		Register(orderHandler).
		Register(reportHandler).
		Register(systemHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
