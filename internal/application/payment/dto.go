package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/payment"
)

// InitiatePaymentRequest is the input for starting an STK push
type InitiatePaymentRequest struct {
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
	PhoneNumber   string    `json:"phone_number" binding:"required,msisdn"`
}

// CallbackRequest is the normalized form of the gateway's callback payload
type CallbackRequest struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int
	ResultDesc        string
	Receipt           string
}

// PaymentResponse is the API representation of a payment
type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	TransactionID     uuid.UUID       `json:"transaction_id"`
	PhoneNumber       string          `json:"phone_number"`
	Amount            decimal.Decimal `json:"amount"`
	CheckoutRequestID string          `json:"checkout_request_id,omitempty"`
	MpesaReceipt      string          `json:"mpesa_receipt,omitempty"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failure_reason,omitempty"`
	CustomerMessage   string          `json:"customer_message,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a payment aggregate to its response form
func ToPaymentResponse(p *payment.MpesaPayment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		TransactionID:     p.TransactionID,
		PhoneNumber:       p.PhoneNumber,
		Amount:            p.Amount,
		CheckoutRequestID: p.CheckoutRequestID,
		MpesaReceipt:      p.MpesaReceipt,
		Status:            string(p.Status),
		FailureReason:     p.FailureReason,
		CompletedAt:       p.CompletedAt,
		CreatedAt:         p.CreatedAt,
	}
}
