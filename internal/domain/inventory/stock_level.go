package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// DefaultReorderLevel is applied to lazily created stock rows
const DefaultReorderLevel int64 = 10

// StockLevel is the quantity of one product held at one store. It is the
// aggregate root for stock mutations; the composite identifier is
// ProductID + StoreID. The quantity invariant (never negative) is enforced
// at every mutation.
type StockLevel struct {
	shared.BaseAggregateRoot
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_store,priority:1"`
	StoreID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_store,priority:2"`
	Quantity     int64     `gorm:"not null"`
	ReorderLevel int64     `gorm:"not null;default:10"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a stock row for a product-store combination with
// zero quantity and the default reorder level.
func NewStockLevel(productID, storeID uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		StoreID:           storeID,
		Quantity:          0,
		ReorderLevel:      DefaultReorderLevel,
	}, nil
}

// Adjust applies a signed delta to the quantity. A delta that would take the
// quantity below zero fails with NEGATIVE_INVENTORY and leaves the row
// untouched.
func (s *StockLevel) Adjust(delta int64) error {
	newQuantity := s.Quantity + delta
	if newQuantity < 0 {
		return shared.NewDomainError("NEGATIVE_INVENTORY",
			fmt.Sprintf("Adjustment of %d would take quantity below zero (current: %d)", delta, s.Quantity))
	}

	s.Quantity = newQuantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	if s.IsLowStock() {
		s.AddDomainEvent(NewStockBelowReorderEvent(s))
	}

	return nil
}

// Deduct removes quantity sold or transferred out. Fails with
// INSUFFICIENT_STOCK carrying the available quantity when the request cannot
// be met.
func (s *StockLevel) Deduct(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if s.Quantity < quantity {
		return NewInsufficientStockError(s.ProductID, s.StoreID, quantity, s.Quantity)
	}

	s.Quantity -= quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	if s.IsLowStock() {
		s.AddDomainEvent(NewStockBelowReorderEvent(s))
	}

	return nil
}

// Restock adds returned or transferred-in quantity
func (s *StockLevel) Restock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	s.Quantity += quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetReorderLevel sets the low-stock alert threshold
func (s *StockLevel) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	s.ReorderLevel = level
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// CanFulfill returns true if the available quantity covers the request
func (s *StockLevel) CanFulfill(quantity int64) bool {
	return s.Quantity >= quantity
}

// IsLowStock returns true when the quantity is at or below the reorder level
func (s *StockLevel) IsLowStock() bool {
	return s.Quantity <= s.ReorderLevel
}

// NewInsufficientStockError builds the structured INSUFFICIENT_STOCK error
// carrying the product, store, requested and available quantities.
func NewInsufficientStockError(productID, storeID uuid.UUID, requested, available int64) *InsufficientStockError {
	return &InsufficientStockError{
		DomainError: shared.DomainError{
			Code: "INSUFFICIENT_STOCK",
			Message: fmt.Sprintf("Insufficient stock for product %s: requested %d, available %d",
				productID, requested, available),
		},
		ProductID: productID,
		StoreID:   storeID,
		Requested: requested,
		Available: available,
	}
}

// InsufficientStockError carries enough detail for the caller to render a
// useful rejection message.
type InsufficientStockError struct {
	shared.DomainError
	ProductID uuid.UUID `json:"product_id"`
	StoreID   uuid.UUID `json:"store_id"`
	Requested int64     `json:"requested"`
	Available int64     `json:"available"`
}
