package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/shared"
)

// TransferRequestedHandler handles TransferRequestedEvent and alerts the
// users who can approve the transfer.
type TransferRequestedHandler struct {
	logger      *zap.Logger
	notifier    notification.Notifier
	userRepo    identity.UserRepository
	productRepo catalog.ProductRepository
	storeRepo   catalog.StoreRepository
}

// NewTransferRequestedHandler creates a new handler for transfer-requested events
func NewTransferRequestedHandler(
	logger *zap.Logger,
	notifier notification.Notifier,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
) *TransferRequestedHandler {
	return &TransferRequestedHandler{
		logger:      logger,
		notifier:    notifier,
		userRepo:    userRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TransferRequestedHandler) EventTypes() []string {
	return []string{inventory.EventTypeTransferRequested}
}

// Handle processes a TransferRequestedEvent
func (h *TransferRequestedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	requested, ok := event.(*inventory.TransferRequestedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeTransferRequested),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeTransferRequested, event.EventType())
	}

	h.logger.Info("transfer requested",
		zap.String("transfer_id", requested.TransferID.String()),
		zap.String("product_id", requested.ProductID.String()),
		zap.Int64("quantity", requested.Quantity),
	)

	if h.notifier == nil {
		return nil
	}

	alert := notification.TransferAlert{
		TransferID: requested.TransferID,
		Quantity:   requested.Quantity,
	}
	if product, err := h.productRepo.FindByID(ctx, requested.ProductID); err == nil {
		alert.ProductName = product.Name
	}
	if store, err := h.storeRepo.FindByID(ctx, requested.FromStoreID); err == nil {
		alert.FromStoreName = store.Name
	}
	if store, err := h.storeRepo.FindByID(ctx, requested.ToStoreID); err == nil {
		alert.ToStoreName = store.Name
	}
	if requester, err := h.userRepo.FindByID(ctx, requested.RequestedBy); err == nil {
		alert.RequestedBy = requester.Username
	}

	recipients := h.approverEmails(ctx)
	if len(recipients) == 0 {
		h.logger.Warn("no recipients for transfer alert",
			zap.String("transfer_id", requested.TransferID.String()))
		return nil
	}

	if err := h.notifier.NotifyTransferRequested(ctx, recipients, alert); err != nil {
		h.logger.Error("failed to send transfer alert",
			zap.String("transfer_id", alert.TransferID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// approverEmails collects the email addresses of global-scope users
func (h *TransferRequestedHandler) approverEmails(ctx context.Context) []string {
	users, err := h.userRepo.FindByRoles(ctx, identity.RoleAdmin, identity.RoleDirector)
	if err != nil {
		h.logger.Error("failed to load alert recipients", zap.Error(err))
		return nil
	}

	emails := make([]string, 0, len(users))
	for _, user := range users {
		if user.Email != "" && user.IsActive {
			emails = append(emails, user.Email)
		}
	}
	return emails
}

var _ shared.EventHandler = (*TransferRequestedHandler)(nil)
