package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/pos/backend/internal/application/catalog"
	identityapp "github.com/pos/backend/internal/application/identity"
	inventoryapp "github.com/pos/backend/internal/application/inventory"
	notificationapp "github.com/pos/backend/internal/application/notification"
	paymentapp "github.com/pos/backend/internal/application/payment"
	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/cache"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/event"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/notification"
	mpesagw "github.com/pos/backend/internal/infrastructure/payment"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting POS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Idempotency store: Redis when reachable, in-memory otherwise. The
	// in-memory fallback only dedupes within one process, which is fine
	// for development but not for a multi-instance deployment.
	var idempotencyStore shared.IdempotencyStore
	var redisStore *cache.RedisIdempotencyStore
	redisStore, err = cache.NewRedisIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		memStore := cache.NewInMemoryIdempotencyStore()
		defer memStore.Close()
		idempotencyStore = memStore
		redisStore = nil
	} else {
		defer func() {
			_ = redisStore.Close()
		}()
		idempotencyStore = redisStore
		log.Info("Redis connected")
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	mpesaPaymentRepo := persistence.NewGormMpesaPaymentRepository(db.DB)

	salesScope := persistence.NewGormSalesTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)

	// Event bus with notification handlers
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Notification.Enabled {
		notifier := notification.NewSMTPNotifier(cfg.Notification, log)
		eventBus.Subscribe(notificationapp.NewLowStockHandler(log, notifier, userRepo, productRepo, storeRepo))
		eventBus.Subscribe(notificationapp.NewTransferRequestedHandler(log, notifier, userRepo, productRepo, storeRepo))
		log.Info("Email notifications enabled", zap.String("smtp_host", cfg.Notification.SMTPHost))
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Auth
	jwtService := auth.NewJWTService(auth.Config{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Application services
	authService := identityapp.NewAuthService(userRepo, auditRepo, jwtService, cfg.Sales.DefaultCommissionRate, log)
	catalogService := catalogapp.NewCatalogService(productRepo, categoryRepo, storeRepo, log)

	salesService := salesapp.NewSalesService(salesScope, userRepo, salesapp.Config{
		VATRate: cfg.Sales.VATRate,
	})
	salesService.SetEventPublisher(eventBus)
	salesService.SetIdempotencyStore(idempotencyStore)

	inventoryService := inventoryapp.NewInventoryService(inventoryScope, userRepo)
	inventoryService.SetEventPublisher(eventBus)

	// Handlers
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Sales:     handler.NewSalesHandler(salesService),
		Inventory: handler.NewInventoryHandler(inventoryService),
	}

	if cfg.Mpesa.Enabled {
		gateway, err := mpesagw.NewMpesaAdapter(cfg.Mpesa)
		if err != nil {
			log.Fatal("Failed to configure M-Pesa gateway", zap.Error(err))
		}
		mpesaService := paymentapp.NewMpesaService(mpesaPaymentRepo, transactionRepo, gateway, log)
		handlers.Payment = handler.NewPaymentHandler(mpesaService, log)
		log.Info("M-Pesa gateway enabled", zap.String("base_url", cfg.Mpesa.BaseURL))
	}

	healthChecks := []handler.HealthCheck{
		{Name: "database", Check: func(ctx context.Context) error { return db.Ping() }},
	}
	if redisStore != nil {
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Check: redisStore.Ping})
	}
	handlers.Health = handler.NewHealthHandler(healthChecks...)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := router.New(handlers, jwtService, log)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
