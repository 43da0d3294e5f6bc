package inventory

import (
	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// Event types for the inventory context
const (
	EventTypeStockBelowReorder = "inventory.stock_below_reorder"
	EventTypeTransferRequested = "inventory.transfer_requested"
)

// StockBelowReorderEvent is raised when a mutation leaves the quantity at or
// below the reorder level.
type StockBelowReorderEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID `json:"product_id"`
	StoreID      uuid.UUID `json:"store_id"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
}

// NewStockBelowReorderEvent creates a low-stock event from the current row state
func NewStockBelowReorderEvent(level *StockLevel) *StockBelowReorderEvent {
	return &StockBelowReorderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorder, "StockLevel", level.ID),
		ProductID:       level.ProductID,
		StoreID:         level.StoreID,
		Quantity:        level.Quantity,
		ReorderLevel:    level.ReorderLevel,
	}
}

// TransferRequestedEvent is raised when a new transfer enters the pending state
type TransferRequestedEvent struct {
	shared.BaseDomainEvent
	TransferID  uuid.UUID `json:"transfer_id"`
	ProductID   uuid.UUID `json:"product_id"`
	FromStoreID uuid.UUID `json:"from_store_id"`
	ToStoreID   uuid.UUID `json:"to_store_id"`
	Quantity    int64     `json:"quantity"`
	RequestedBy uuid.UUID `json:"requested_by"`
}

// NewTransferRequestedEvent creates a transfer-requested event
func NewTransferRequestedEvent(t *StockTransfer) *TransferRequestedEvent {
	return &TransferRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferRequested, "StockTransfer", t.ID),
		TransferID:      t.ID,
		ProductID:       t.ProductID,
		FromStoreID:     t.FromStoreID,
		ToStoreID:       t.ToStoreID,
		Quantity:        t.Quantity,
		RequestedBy:     t.RequestedBy,
	}
}
