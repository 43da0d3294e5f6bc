package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
)

// InventoryService handles stock adjustments, transfers and low-stock
// queries. Mutations run inside the TransactionScope so that stock moves,
// transfer state changes and audit entries commit or roll back together.
type InventoryService struct {
	scope          TransactionScope
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope TransactionScope, userRepo identity.UserRepository) *InventoryService {
	return &InventoryService{
		scope:    scope,
		userRepo: userRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AdjustStock applies a signed delta to one product's quantity at one store.
// The stock row is created at zero when it does not exist yet, so a first
// delivery can be recorded without prior setup. A delta that would take the
// quantity negative fails and nothing is written.
func (s *InventoryService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockLevelResponse, error) {
	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.Role.CanManageInventory() {
		return nil, shared.ErrForbidden
	}
	if !user.CanAccessStore(req.StoreID) {
		return nil, shared.ErrForbidden
	}

	var level *inventory.StockLevel
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, req.ProductID); err != nil {
			return err
		}

		level, err = repos.StockLevelRepo().GetOrCreateForUpdate(ctx, req.ProductID, req.StoreID)
		if err != nil {
			return err
		}
		before := level.Quantity
		if err := level.Adjust(req.Delta); err != nil {
			return err
		}
		if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
			return err
		}

		entry, err := audit.NewAuditLog(req.UserID, audit.ActionUpdate, "StockLevel", level.ID.String(),
			fmt.Sprintf("Adjusted stock by %+d (from %d to %d): %s", req.Delta, before, level.Quantity, req.Reason), req.IPAddress)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level.GetDomainEvents())
	level.ClearDomainEvents()

	response := ToStockLevelResponse(level)
	return &response, nil
}

// RequestTransfer creates a pending transfer request between two stores. No
// stock moves until a global-scope user approves it.
func (s *InventoryService) RequestTransfer(ctx context.Context, req RequestTransferRequest) (*TransferResponse, error) {
	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.Role.CanRequestTransfers() {
		return nil, shared.ErrForbidden
	}
	// Managers request stock into their own store from another branch.
	if !user.CanAccessStore(req.ToStoreID) {
		return nil, shared.ErrForbidden
	}

	var transfer *inventory.StockTransfer
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, req.ProductID); err != nil {
			return err
		}

		// Pre-check the source branch so obviously unfulfillable
		// requests fail now instead of at approval. Approval re-checks
		// under a row lock, so this read does not need one.
		source, err := repos.StockLevelRepo().Find(ctx, req.ProductID, req.FromStoreID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return inventory.NewInsufficientStockError(req.ProductID, req.FromStoreID, req.Quantity, 0)
			}
			return err
		}
		if !source.CanFulfill(req.Quantity) {
			return inventory.NewInsufficientStockError(req.ProductID, req.FromStoreID, req.Quantity, source.Quantity)
		}

		transfer, err = inventory.NewStockTransfer(req.ProductID, req.FromStoreID, req.ToStoreID,
			req.UserID, req.Quantity, req.Notes)
		if err != nil {
			return err
		}
		if err := repos.TransferRepo().Save(ctx, transfer); err != nil {
			return err
		}

		entry, err := audit.NewAuditLog(req.UserID, audit.ActionCreate, "StockTransfer", transfer.ID.String(),
			fmt.Sprintf("Requested transfer of %d units", req.Quantity), req.IPAddress)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, transfer.GetDomainEvents())
	transfer.ClearDomainEvents()

	response := ToTransferResponse(transfer)
	return &response, nil
}

// ApproveTransfer approves a pending transfer and moves the stock. The
// transfer row, the source deduction, the destination restock and the audit
// entry are one transaction; insufficient stock at the source rolls the
// approval back entirely and the transfer stays pending.
func (s *InventoryService) ApproveTransfer(ctx context.Context, req DecideTransferRequest) (*TransferResponse, error) {
	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.Role.CanApproveTransfers() {
		return nil, shared.ErrForbidden
	}

	var transfer *inventory.StockTransfer
	var lowStockEvents []shared.DomainEvent
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err = repos.TransferRepo().FindByIDForUpdate(ctx, req.TransferID)
		if err != nil {
			return err
		}
		if err := transfer.Approve(req.UserID); err != nil {
			return err
		}

		source, err := repos.StockLevelRepo().FindForUpdate(ctx, transfer.ProductID, transfer.FromStoreID)
		if err != nil {
			return err
		}
		if err := source.Deduct(transfer.Quantity); err != nil {
			return err
		}

		dest, err := repos.StockLevelRepo().GetOrCreateForUpdate(ctx, transfer.ProductID, transfer.ToStoreID)
		if err != nil {
			return err
		}
		if err := dest.Restock(transfer.Quantity); err != nil {
			return err
		}

		if err := repos.StockLevelRepo().Save(ctx, source); err != nil {
			return err
		}
		if err := repos.StockLevelRepo().Save(ctx, dest); err != nil {
			return err
		}
		if err := repos.TransferRepo().Save(ctx, transfer); err != nil {
			return err
		}
		lowStockEvents = source.GetDomainEvents()
		source.ClearDomainEvents()

		entry, err := audit.NewAuditLog(req.UserID, audit.ActionApprove, "StockTransfer", transfer.ID.String(),
			fmt.Sprintf("Approved transfer of %d units", transfer.Quantity), req.IPAddress)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, lowStockEvents)

	response := ToTransferResponse(transfer)
	return &response, nil
}

// RejectTransfer rejects a pending transfer without moving stock
func (s *InventoryService) RejectTransfer(ctx context.Context, req DecideTransferRequest) (*TransferResponse, error) {
	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.Role.CanApproveTransfers() {
		return nil, shared.ErrForbidden
	}

	var transfer *inventory.StockTransfer
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err = repos.TransferRepo().FindByIDForUpdate(ctx, req.TransferID)
		if err != nil {
			return err
		}
		if err := transfer.Reject(req.UserID, req.Reason); err != nil {
			return err
		}
		if err := repos.TransferRepo().Save(ctx, transfer); err != nil {
			return err
		}

		entry, err := audit.NewAuditLog(req.UserID, audit.ActionReject, "StockTransfer", transfer.ID.String(),
			fmt.Sprintf("Rejected transfer: %s", req.Reason), req.IPAddress)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	response := ToTransferResponse(transfer)
	return &response, nil
}

// GetStock retrieves the stock row for a product at a store. Missing rows
// read as zero quantity.
func (s *InventoryService) GetStock(ctx context.Context, productID, storeID uuid.UUID) (*StockLevelResponse, error) {
	var response StockLevelResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLevelRepo().Find(ctx, productID, storeID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				response = StockLevelResponse{
					ProductID:    productID,
					StoreID:      storeID,
					Quantity:     0,
					ReorderLevel: inventory.DefaultReorderLevel,
					LowStock:     true,
				}
				return nil
			}
			return err
		}
		response = ToStockLevelResponse(level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByStore retrieves all stock rows for a store
func (s *InventoryService) ListByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, error) {
	var responses []StockLevelResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		levels, err := repos.StockLevelRepo().FindByStore(ctx, storeID, filter)
		if err != nil {
			return err
		}
		responses = s.toResponsesWithNames(ctx, repos, levels)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ListLowStock retrieves stock rows at or below their reorder level, across
// all stores when storeID is nil.
func (s *InventoryService) ListLowStock(ctx context.Context, storeID *uuid.UUID) ([]StockLevelResponse, error) {
	var responses []StockLevelResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		levels, err := repos.StockLevelRepo().FindLowStock(ctx, storeID)
		if err != nil {
			return err
		}
		responses = s.toResponsesWithNames(ctx, repos, levels)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ListTransfers retrieves transfers in a given status
func (s *InventoryService) ListTransfers(ctx context.Context, status inventory.TransferStatus, filter shared.Filter) ([]TransferResponse, error) {
	var responses []TransferResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfers, err := repos.TransferRepo().FindByStatus(ctx, status, filter)
		if err != nil {
			return err
		}
		responses = make([]TransferResponse, 0, len(transfers))
		for _, t := range transfers {
			responses = append(responses, ToTransferResponse(t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// toResponsesWithNames decorates stock responses with product names
func (s *InventoryService) toResponsesWithNames(ctx context.Context, repos TransactionalRepositories, levels []*inventory.StockLevel) []StockLevelResponse {
	ids := make([]uuid.UUID, 0, len(levels))
	for _, level := range levels {
		ids = append(ids, level.ProductID)
	}
	names := make(map[uuid.UUID]string, len(ids))
	if products, err := repos.ProductRepo().FindByIDs(ctx, ids); err == nil {
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	responses := make([]StockLevelResponse, 0, len(levels))
	for _, level := range levels {
		response := ToStockLevelResponse(level)
		response.ProductName = names[level.ProductID]
		responses = append(responses, response)
	}
	return responses
}

// publishDomainEvents publishes the given domain events
func (s *InventoryService) publishDomainEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
