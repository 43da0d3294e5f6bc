package payment

import (
	"context"

	"github.com/google/uuid"
)

// MpesaPaymentRepository is the persistence port for payment rows
type MpesaPaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MpesaPayment, error)
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) (*MpesaPayment, error)
	FindByCheckoutRequest(ctx context.Context, checkoutRequestID string) (*MpesaPayment, error)
	Save(ctx context.Context, payment *MpesaPayment) error
}

// STKPushResult carries the gateway identifiers from an accepted push request
type STKPushResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResponseCode      string
	CustomerMessage   string
}

// Gateway is the port to the M-Pesa STK push API
type Gateway interface {
	InitiateSTKPush(ctx context.Context, payment *MpesaPayment, accountReference string) (*STKPushResult, error)
}
