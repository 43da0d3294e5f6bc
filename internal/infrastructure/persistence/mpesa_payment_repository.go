package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/payment"
	"github.com/pos/backend/internal/domain/shared"
)

// GormMpesaPaymentRepository implements MpesaPaymentRepository using GORM
type GormMpesaPaymentRepository struct {
	db *gorm.DB
}

// NewGormMpesaPaymentRepository creates a new GormMpesaPaymentRepository
func NewGormMpesaPaymentRepository(db *gorm.DB) *GormMpesaPaymentRepository {
	return &GormMpesaPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormMpesaPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.MpesaPayment, error) {
	var pay payment.MpesaPayment
	if err := r.db.WithContext(ctx).First(&pay, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// FindByTransaction finds the payment recorded against a sales transaction
func (r *GormMpesaPaymentRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) (*payment.MpesaPayment, error) {
	var pay payment.MpesaPayment
	if err := r.db.WithContext(ctx).First(&pay, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// FindByCheckoutRequest finds a payment by the gateway's checkout request ID
func (r *GormMpesaPaymentRepository) FindByCheckoutRequest(ctx context.Context, checkoutRequestID string) (*payment.MpesaPayment, error) {
	var pay payment.MpesaPayment
	if err := r.db.WithContext(ctx).First(&pay, "checkout_request_id = ?", checkoutRequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// Save creates or updates a payment
func (r *GormMpesaPaymentRepository) Save(ctx context.Context, pay *payment.MpesaPayment) error {
	if err := r.db.WithContext(ctx).Save(pay).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ payment.MpesaPaymentRepository = (*GormMpesaPaymentRepository)(nil)
