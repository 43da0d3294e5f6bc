package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// TransferStatus is the state of a stock transfer request
type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"
	TransferStatusApproved TransferStatus = "approved"
	TransferStatusRejected TransferStatus = "rejected"
)

// IsTerminal returns true for states that admit no further transitions
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusApproved || s == TransferStatusRejected
}

// StockTransfer is a request to move quantity of one product from one store
// to another. It is created pending and moves exactly once to approved or
// rejected. No stock moves until approval; the approval itself performs the
// deduction and restock in the same database transaction.
type StockTransfer struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	FromStoreID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ToStoreID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Quantity    int64          `gorm:"not null"`
	Status      TransferStatus `gorm:"not null;default:'pending';index"`
	RequestedBy uuid.UUID      `gorm:"type:uuid;not null"`
	DecidedBy   *uuid.UUID     `gorm:"type:uuid"`
	DecidedAt   *time.Time
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer creates a pending transfer request
func NewStockTransfer(productID, fromStoreID, toStoreID, requestedBy uuid.UUID, quantity int64, notes string) (*StockTransfer, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if fromStoreID == uuid.Nil || toStoreID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if fromStoreID == toStoreID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination store must differ")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Requesting user cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
	}

	transfer := &StockTransfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		FromStoreID:       fromStoreID,
		ToStoreID:         toStoreID,
		Quantity:          quantity,
		Status:            TransferStatusPending,
		RequestedBy:       requestedBy,
		Notes:             notes,
	}

	transfer.AddDomainEvent(NewTransferRequestedEvent(transfer))
	return transfer, nil
}

// Approve moves a pending transfer to approved. Callers are responsible for
// moving the stock itself under the same transaction.
func (t *StockTransfer) Approve(decidedBy uuid.UUID) error {
	if t.Status != TransferStatusPending {
		return shared.ErrTransferNotPending
	}
	if decidedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Deciding user cannot be empty")
	}

	now := time.Now()
	t.Status = TransferStatusApproved
	t.DecidedBy = &decidedBy
	t.DecidedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// Reject moves a pending transfer to rejected without touching stock
func (t *StockTransfer) Reject(decidedBy uuid.UUID, reason string) error {
	if t.Status != TransferStatusPending {
		return shared.ErrTransferNotPending
	}
	if decidedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Deciding user cannot be empty")
	}

	now := time.Now()
	t.Status = TransferStatusRejected
	t.DecidedBy = &decidedBy
	t.DecidedAt = &now
	if reason != "" {
		t.Notes = reason
	}
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// IsPending returns true while the transfer awaits a decision
func (t *StockTransfer) IsPending() bool {
	return t.Status == TransferStatusPending
}
