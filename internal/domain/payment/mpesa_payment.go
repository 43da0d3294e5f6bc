package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// PaymentStatus is the state of an M-Pesa payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsTerminal returns true for states that admit no further transitions
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// MpesaPayment tracks one STK push against one transaction. A transaction
// has at most one payment row; the checkout request identifier from the
// gateway is unique and used to correlate the asynchronous callback.
type MpesaPayment struct {
	shared.BaseAggregateRoot
	TransactionID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	PhoneNumber       string          `gorm:"size:15;not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CheckoutRequestID string          `gorm:"size:100;uniqueIndex"`
	MerchantRequestID string          `gorm:"size:100"`
	MpesaReceipt      string          `gorm:"size:50"`
	Status            PaymentStatus   `gorm:"size:15;not null;default:'pending';index"`
	FailureReason     string          `gorm:"type:text"`
	CompletedAt       *time.Time
}

// TableName returns the table name for GORM
func (MpesaPayment) TableName() string {
	return "mpesa_payments"
}

// NewMpesaPayment creates a pending payment for a transaction
func NewMpesaPayment(transactionID uuid.UUID, phoneNumber string, amount decimal.Decimal) (*MpesaPayment, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}
	if phoneNumber == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone number cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	return &MpesaPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransactionID:     transactionID,
		PhoneNumber:       phoneNumber,
		Amount:            amount,
		Status:            PaymentStatusPending,
	}, nil
}

// MarkInitiated records the gateway identifiers returned by the STK push
func (p *MpesaPayment) MarkInitiated(checkoutRequestID, merchantRequestID string) error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidState
	}
	if checkoutRequestID == "" {
		return shared.NewDomainError("INVALID_CHECKOUT_REQUEST", "Checkout request ID cannot be empty")
	}

	p.CheckoutRequestID = checkoutRequestID
	p.MerchantRequestID = merchantRequestID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Complete moves a pending payment to completed with the gateway receipt
func (p *MpesaPayment) Complete(receipt string) error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidState
	}
	if receipt == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "M-Pesa receipt cannot be empty")
	}

	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.MpesaReceipt = receipt
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Fail moves a pending payment to failed with the gateway's reason
func (p *MpesaPayment) Fail(reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidState
	}

	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Cancel records that the customer dismissed the STK prompt
func (p *MpesaPayment) Cancel() error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidState
	}

	p.Status = PaymentStatusCancelled
	p.FailureReason = "Request cancelled by user"
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
