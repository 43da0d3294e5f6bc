package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every handler the router wires up
type Handlers struct {
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Sales     *handler.SalesHandler
	Inventory *handler.InventoryHandler
	Payment   *handler.PaymentHandler
	Health    *handler.HealthHandler
}

// New builds the gin engine with all middleware and routes registered.
// The payment handler may be nil when the M-Pesa gateway is disabled.
func New(handlers Handlers, jwtService *auth.JWTService, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
	)

	engine.GET("/health", handlers.Health.Liveness)
	engine.GET("/health/ready", handlers.Health.Readiness)

	api := engine.Group("/api/v1")

	// Public routes. The Daraja callback cannot carry a JWT; the payment
	// service matches callbacks by CheckoutRequestID instead.
	api.POST("/auth/login", handlers.Auth.Login)
	if handlers.Payment != nil {
		api.POST("/payments/mpesa/callback", handlers.Payment.Callback)
	}

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(jwtService))

	registerAuthRoutes(authed, handlers.Auth)
	registerCatalogRoutes(authed, handlers.Catalog)
	registerSalesRoutes(authed, handlers.Sales)
	registerInventoryRoutes(authed, handlers.Inventory)
	if handlers.Payment != nil {
		registerPaymentRoutes(authed, handlers.Payment)
	}

	return engine
}

// Role groups for route guards. The application layer re-checks capability
// and store scope; these guards only reject obviously unauthorized roles
// before any work is done.
var (
	salesRoles     = []string{string(identity.RoleDirector), string(identity.RoleAdmin), string(identity.RoleManager), string(identity.RoleStaff)}
	inventoryRoles = []string{string(identity.RoleDirector), string(identity.RoleAdmin), string(identity.RoleManager)}
	adminRoles     = []string{string(identity.RoleDirector), string(identity.RoleAdmin)}
)

func registerAuthRoutes(rg *gin.RouterGroup, h *handler.AuthHandler) {
	rg.GET("/auth/me", h.Me)
	rg.POST("/users", middleware.RequireRoles(adminRoles...), h.CreateUser)
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *handler.CatalogHandler) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.POST("/products", middleware.RequireRoles(adminRoles...), h.CreateProduct)
	rg.PUT("/products/:id/price", middleware.RequireRoles(adminRoles...), h.UpdatePrice)

	rg.GET("/categories", h.ListCategories)
	rg.POST("/categories", middleware.RequireRoles(adminRoles...), h.CreateCategory)

	rg.GET("/stores", h.ListStores)
	rg.GET("/stores/:id", h.GetStore)
	rg.POST("/stores", middleware.RequireRoles(adminRoles...), h.CreateStore)
}

func registerSalesRoutes(rg *gin.RouterGroup, h *handler.SalesHandler) {
	rg.POST("/sales", middleware.RequireRoles(salesRoles...), h.CreateSale)
	rg.POST("/sales/:id/return", middleware.RequireRoles(salesRoles...), h.ProcessReturn)
	rg.GET("/sales/:id", h.GetTransaction)
	rg.GET("/stores/:id/sales", h.ListByStore)
	rg.GET("/stores/:id/sales/summary", h.DailySummary)
}

func registerInventoryRoutes(rg *gin.RouterGroup, h *handler.InventoryHandler) {
	rg.POST("/inventory/adjust", middleware.RequireRoles(inventoryRoles...), h.AdjustStock)
	rg.GET("/inventory/stock", h.GetStock)
	rg.GET("/inventory/low-stock", h.ListLowStock)
	rg.GET("/stores/:id/stock", h.ListByStore)

	rg.POST("/transfers", middleware.RequireRoles(inventoryRoles...), h.RequestTransfer)
	rg.POST("/transfers/:id/approve", middleware.RequireRoles(adminRoles...), h.ApproveTransfer)
	rg.POST("/transfers/:id/reject", middleware.RequireRoles(adminRoles...), h.RejectTransfer)
	rg.GET("/transfers", h.ListTransfers)
}

func registerPaymentRoutes(rg *gin.RouterGroup, h *handler.PaymentHandler) {
	rg.POST("/payments/mpesa", middleware.RequireRoles(salesRoles...), h.InitiateSTKPush)
	rg.GET("/sales/:id/payment", h.GetByTransaction)
}
