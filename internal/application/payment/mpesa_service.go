package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/payment"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// Result codes the gateway reports in STK push callbacks
const (
	ResultCodeSuccess   = 0
	ResultCodeCancelled = 1032
)

// MpesaService drives the STK push flow: initiate against a transaction,
// then settle the payment from the asynchronous gateway callback.
type MpesaService struct {
	paymentRepo     payment.MpesaPaymentRepository
	transactionRepo sales.TransactionRepository
	gateway         payment.Gateway
	logger          *zap.Logger
}

// NewMpesaService creates a new MpesaService
func NewMpesaService(
	paymentRepo payment.MpesaPaymentRepository,
	transactionRepo sales.TransactionRepository,
	gateway payment.Gateway,
	logger *zap.Logger,
) *MpesaService {
	return &MpesaService{
		paymentRepo:     paymentRepo,
		transactionRepo: transactionRepo,
		gateway:         gateway,
		logger:          logger,
	}
}

// InitiateSTKPush starts an M-Pesa payment for a sale. The push amount is
// always the transaction total; a transaction can carry at most one payment.
func (s *MpesaService) InitiateSTKPush(ctx context.Context, req InitiatePaymentRequest) (*PaymentResponse, error) {
	txn, err := s.transactionRepo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if !txn.IsSale() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Only sale transactions can be paid")
	}
	if txn.PaymentMethod != sales.PaymentMethodMpesa {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Transaction is not an M-Pesa sale")
	}

	existing, err := s.paymentRepo.FindByTransaction(ctx, req.TransactionID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("PAYMENT_EXISTS", "A payment already exists for this transaction")
	}

	pay, err := payment.NewMpesaPayment(txn.ID, req.PhoneNumber, txn.Total)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.InitiateSTKPush(ctx, pay, txn.TransactionNumber)
	if err != nil {
		s.logger.Error("stk push failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if err := pay.MarkInitiated(result.CheckoutRequestID, result.MerchantRequestID); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, pay); err != nil {
		return nil, err
	}

	s.logger.Info("stk push initiated",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("checkout_request_id", result.CheckoutRequestID),
	)

	response := ToPaymentResponse(pay)
	response.CustomerMessage = result.CustomerMessage
	return &response, nil
}

// HandleCallback settles a pending payment from the gateway's asynchronous
// result. Result code 0 completes the payment, 1032 records a customer
// cancellation, anything else records a failure. Callbacks for payments
// already settled are acknowledged without change.
func (s *MpesaService) HandleCallback(ctx context.Context, callback CallbackRequest) error {
	pay, err := s.paymentRepo.FindByCheckoutRequest(ctx, callback.CheckoutRequestID)
	if err != nil {
		return err
	}
	if pay.Status.IsTerminal() {
		s.logger.Warn("callback for settled payment ignored",
			zap.String("checkout_request_id", callback.CheckoutRequestID),
			zap.String("status", string(pay.Status)),
		)
		return nil
	}

	switch callback.ResultCode {
	case ResultCodeSuccess:
		err = pay.Complete(callback.Receipt)
	case ResultCodeCancelled:
		err = pay.Cancel()
	default:
		err = pay.Fail(callback.ResultDesc)
	}
	if err != nil {
		return err
	}

	if err := s.paymentRepo.Save(ctx, pay); err != nil {
		return err
	}

	s.logger.Info("payment settled",
		zap.String("transaction_id", pay.TransactionID.String()),
		zap.String("status", string(pay.Status)),
		zap.Int("result_code", callback.ResultCode),
	)
	return nil
}

// GetByTransaction retrieves the payment for a transaction
func (s *MpesaService) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*PaymentResponse, error) {
	pay, err := s.paymentRepo.FindByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(pay)
	return &response, nil
}
