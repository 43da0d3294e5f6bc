package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/shared"
)

// LowStockHandler handles StockBelowReorderEvent and alerts managers of the
// affected store. Delivery failures are logged and swallowed; alerting never
// fails the stock mutation that raised the event.
type LowStockHandler struct {
	logger      *zap.Logger
	notifier    notification.Notifier
	userRepo    identity.UserRepository
	productRepo catalog.ProductRepository
	storeRepo   catalog.StoreRepository
}

// NewLowStockHandler creates a new handler for low-stock events
func NewLowStockHandler(
	logger *zap.Logger,
	notifier notification.Notifier,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
) *LowStockHandler {
	return &LowStockHandler{
		logger:      logger,
		notifier:    notifier,
		userRepo:    userRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorder}
}

// Handle processes a StockBelowReorderEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.StockBelowReorderEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowReorder),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowReorder, event.EventType())
	}

	h.logger.Warn("stock below reorder level",
		zap.String("product_id", lowStock.ProductID.String()),
		zap.String("store_id", lowStock.StoreID.String()),
		zap.Int64("quantity", lowStock.Quantity),
		zap.Int64("reorder_level", lowStock.ReorderLevel),
	)

	if h.notifier == nil {
		return nil
	}

	alert := notification.LowStockAlert{
		ProductID:    lowStock.ProductID,
		StoreID:      lowStock.StoreID,
		Quantity:     lowStock.Quantity,
		ReorderLevel: lowStock.ReorderLevel,
	}
	if product, err := h.productRepo.FindByID(ctx, lowStock.ProductID); err == nil {
		alert.ProductName = product.Name
	}
	if store, err := h.storeRepo.FindByID(ctx, lowStock.StoreID); err == nil {
		alert.StoreName = store.Name
	}

	recipients := h.managerEmails(ctx, lowStock.StoreID)
	if len(recipients) == 0 {
		h.logger.Warn("no recipients for low stock alert",
			zap.String("store_id", lowStock.StoreID.String()))
		return nil
	}

	if err := h.notifier.NotifyLowStock(ctx, recipients, alert); err != nil {
		h.logger.Error("failed to send low stock alert",
			zap.String("product_id", alert.ProductID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// managerEmails collects the email addresses of the store's managers plus
// all global-scope users.
func (h *LowStockHandler) managerEmails(ctx context.Context, storeID uuid.UUID) []string {
	users, err := h.userRepo.FindByRoles(ctx, identity.RoleManager, identity.RoleAdmin, identity.RoleDirector)
	if err != nil {
		h.logger.Error("failed to load alert recipients", zap.Error(err))
		return nil
	}

	emails := make([]string, 0, len(users))
	for _, user := range users {
		if user.Email == "" || !user.IsActive {
			continue
		}
		if user.Role.HasGlobalScope() || (user.StoreID != nil && *user.StoreID == storeID) {
			emails = append(emails, user.Email)
		}
	}
	return emails
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
