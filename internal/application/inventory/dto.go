package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/inventory"
)

// AdjustStockRequest is the input for a manual stock adjustment
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	StoreID   uuid.UUID `json:"store_id" binding:"required"`
	Delta     int64     `json:"delta" binding:"required"`
	Reason    string    `json:"reason"`
	UserID    uuid.UUID `json:"-"`
	IPAddress string    `json:"-"`
}

// RequestTransferRequest is the input for requesting a stock transfer
type RequestTransferRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	FromStoreID uuid.UUID `json:"from_store_id" binding:"required"`
	ToStoreID   uuid.UUID `json:"to_store_id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,gt=0"`
	Notes       string    `json:"notes"`
	UserID      uuid.UUID `json:"-"`
	IPAddress   string    `json:"-"`
}

// DecideTransferRequest is the input for approving or rejecting a transfer
type DecideTransferRequest struct {
	TransferID uuid.UUID `json:"-"`
	Reason     string    `json:"reason"`
	UserID     uuid.UUID `json:"-"`
	IPAddress  string    `json:"-"`
}

// StockLevelResponse is the API representation of a stock row
type StockLevelResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	StoreID      uuid.UUID `json:"store_id"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
	LowStock     bool      `json:"low_stock"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToStockLevelResponse converts a stock row to its response form
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:    level.ProductID,
		StoreID:      level.StoreID,
		Quantity:     level.Quantity,
		ReorderLevel: level.ReorderLevel,
		LowStock:     level.IsLowStock(),
		UpdatedAt:    level.UpdatedAt,
	}
}

// TransferResponse is the API representation of a transfer request
type TransferResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	FromStoreID uuid.UUID  `json:"from_store_id"`
	ToStoreID   uuid.UUID  `json:"to_store_id"`
	Quantity    int64      `json:"quantity"`
	Status      string     `json:"status"`
	RequestedBy uuid.UUID  `json:"requested_by"`
	DecidedBy   *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToTransferResponse converts a transfer to its response form
func ToTransferResponse(t *inventory.StockTransfer) TransferResponse {
	return TransferResponse{
		ID:          t.ID,
		ProductID:   t.ProductID,
		FromStoreID: t.FromStoreID,
		ToStoreID:   t.ToStoreID,
		Quantity:    t.Quantity,
		Status:      string(t.Status),
		RequestedBy: t.RequestedBy,
		DecidedBy:   t.DecidedBy,
		DecidedAt:   t.DecidedAt,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
	}
}
