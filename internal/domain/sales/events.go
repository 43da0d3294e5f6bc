package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// Event types for the sales context
const (
	EventTypeSaleCompleted   = "sales.sale_completed"
	EventTypeReturnProcessed = "sales.return_processed"
)

// SaleCompletedEvent is raised when a sale transaction is created
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID       `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	StoreID           uuid.UUID       `json:"store_id"`
	CashierID         uuid.UUID       `json:"cashier_id"`
	Total             decimal.Decimal `json:"total"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
}

// NewSaleCompletedEvent creates a sale-completed event
func NewSaleCompletedEvent(t *Transaction) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSaleCompleted, "Transaction", t.ID),
		TransactionID:     t.ID,
		TransactionNumber: t.TransactionNumber,
		StoreID:           t.StoreID,
		CashierID:         t.CashierID,
		Total:             t.Total,
		CommissionAmount:  t.CommissionAmount,
	}
}

// ReturnProcessedEvent is raised when a return transaction is created
type ReturnProcessedEvent struct {
	shared.BaseDomainEvent
	TransactionID         uuid.UUID       `json:"transaction_id"`
	TransactionNumber     string          `json:"transaction_number"`
	OriginalTransactionID uuid.UUID       `json:"original_transaction_id"`
	StoreID               uuid.UUID       `json:"store_id"`
	Total                 decimal.Decimal `json:"total"`
}

// NewReturnProcessedEvent creates a return-processed event
func NewReturnProcessedEvent(t *Transaction) *ReturnProcessedEvent {
	event := &ReturnProcessedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReturnProcessed, "Transaction", t.ID),
		TransactionID:     t.ID,
		TransactionNumber: t.TransactionNumber,
		StoreID:           t.StoreID,
		Total:             t.Total,
	}
	if t.OriginalTransactionID != nil {
		event.OriginalTransactionID = *t.OriginalTransactionID
	}
	return event
}
