package sales

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// TransactionType distinguishes sales from returns
type TransactionType string

const (
	TransactionTypeSale   TransactionType = "sale"
	TransactionTypeReturn TransactionType = "return"
)

// PaymentMethod is how the customer settled the transaction
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodCard  PaymentMethod = "card"
)

// IsValid checks if the payment method is recognised
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMpesa, PaymentMethodCard:
		return true
	}
	return false
}

// TransactionItem is a line item in a sale or return. Quantities are
// positive on both; a return transaction carries the sign in its header
// amounts.
type TransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName   string          `gorm:"size:255;not null"`
	Quantity      int64           `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (TransactionItem) TableName() string {
	return "transaction_items"
}

// NewTransactionItem creates a sale line item and computes its total
func NewTransactionItem(transactionID, productID uuid.UUID, productName string, quantity int64, unitPrice decimal.Decimal) (*TransactionItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &TransactionItem{
		ID:            uuid.New(),
		TransactionID: transactionID,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		LineTotal:     unitPrice.Mul(decimal.NewFromInt(quantity)).Round(2),
		CreatedAt:     time.Now(),
	}, nil
}

// Transaction is the sale or return aggregate root. All monetary fields are
// computed at creation and never mutated afterwards; the invariant
// Total = Subtotal + VATAmount holds for every row. Return transactions
// carry negated amounts, a zero commission, and a reference to the sale
// they reverse.
type Transaction struct {
	shared.BaseAggregateRoot
	TransactionNumber     string          `gorm:"size:30;not null;uniqueIndex"`
	Type                  TransactionType `gorm:"size:10;not null;index"`
	StoreID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginalTransactionID *uuid.UUID      `gorm:"type:uuid;index"`
	Items                 []*TransactionItem `gorm:"foreignKey:TransactionID"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	VATRate               decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	VATAmount             decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total                 decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CommissionRate        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CommissionAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentMethod         PaymentMethod   `gorm:"size:10;not null"`
	CustomerName          string          `gorm:"size:255"`
	CustomerPhone         string          `gorm:"size:20"`
	Reason                string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// SaleLine is the input for one line of a new sale
type SaleLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// NewSale builds a sale transaction from its lines. Subtotal is the sum of
// line totals, VAT is applied on the subtotal, the total includes VAT, and
// the cashier commission is computed on the total. Each amount is rounded to
// two decimal places independently.
func NewSale(storeID, cashierID uuid.UUID, lines []SaleLine, vatRate, commissionRate decimal.Decimal, paymentMethod PaymentMethod) (*Transaction, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Cashier ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_SALE", "Sale must contain at least one item")
	}
	if vatRate.IsNegative() || commissionRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rates cannot be negative")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD",
			fmt.Sprintf("Unknown payment method: %s", paymentMethod))
	}

	txn := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransactionNumber: GenerateTransactionNumber(),
		Type:              TransactionTypeSale,
		StoreID:           storeID,
		CashierID:         cashierID,
		VATRate:           vatRate,
		CommissionRate:    commissionRate,
		PaymentMethod:     paymentMethod,
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		item, err := NewTransactionItem(txn.ID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		txn.Items = append(txn.Items, item)
		subtotal = subtotal.Add(item.LineTotal)
	}

	hundred := decimal.NewFromInt(100)
	txn.Subtotal = subtotal.Round(2)
	txn.VATAmount = txn.Subtotal.Mul(vatRate).Div(hundred).Round(2)
	txn.Total = txn.Subtotal.Add(txn.VATAmount)
	txn.CommissionAmount = txn.Total.Mul(commissionRate).Div(hundred).Round(2)

	txn.AddDomainEvent(NewSaleCompletedEvent(txn))
	return txn, nil
}

// ReturnLine selects one product and quantity from a sale for return
type ReturnLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// NewReturn builds the reversal of part or all of a completed sale. Each
// line is priced at the original sale's unit price, header amounts are the
// negated sale computation over the returned lines, and commission is zero
// (the cashier keeps the commission from the sale). Item rows carry positive
// quantities; the header sign distinguishes a return from a sale.
func NewReturn(original *Transaction, cashierID uuid.UUID, lines []ReturnLine, reason string) (*Transaction, error) {
	if original == nil {
		return nil, shared.ErrNotFound
	}
	if original.Type != TransactionTypeSale {
		return nil, shared.NewDomainError("INVALID_RETURN", "Only sale transactions can be returned")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Cashier ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_RETURN", "Return must contain at least one item")
	}

	soldItems := make(map[uuid.UUID]*TransactionItem, len(original.Items))
	for _, item := range original.Items {
		soldItems[item.ProductID] = item
	}

	originalID := original.ID
	txn := &Transaction{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		TransactionNumber:     GenerateTransactionNumber(),
		Type:                  TransactionTypeReturn,
		StoreID:               original.StoreID,
		CashierID:             cashierID,
		OriginalTransactionID: &originalID,
		VATRate:               original.VATRate,
		CommissionRate:        decimal.Zero,
		CommissionAmount:      decimal.Zero,
		PaymentMethod:         original.PaymentMethod,
		Reason:                reason,
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		sold, ok := soldItems[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_RETURN_ITEM", "Product was not part of the original sale")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
		}
		if line.Quantity > sold.Quantity {
			return nil, shared.NewDomainError("RETURN_EXCEEDS_SALE",
				fmt.Sprintf("Cannot return %d of %s, the sale only had %d", line.Quantity, sold.ProductName, sold.Quantity))
		}

		lineTotal := sold.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)).Round(2)
		txn.Items = append(txn.Items, &TransactionItem{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			ProductID:     line.ProductID,
			ProductName:   sold.ProductName,
			Quantity:      line.Quantity,
			UnitPrice:     sold.UnitPrice,
			LineTotal:     lineTotal,
			CreatedAt:     time.Now(),
		})
		subtotal = subtotal.Add(lineTotal)
	}

	hundred := decimal.NewFromInt(100)
	subtotal = subtotal.Round(2)
	vat := subtotal.Mul(original.VATRate).Div(hundred).Round(2)
	txn.Subtotal = subtotal.Neg()
	txn.VATAmount = vat.Neg()
	txn.Total = txn.Subtotal.Add(txn.VATAmount)

	txn.AddDomainEvent(NewReturnProcessedEvent(txn))
	return txn, nil
}

// IsSale returns true for sale transactions
func (t *Transaction) IsSale() bool {
	return t.Type == TransactionTypeSale
}

// GenerateTransactionNumber produces a number of the form
// TXN-YYYYMMDD-XXXXXXXX where the suffix is eight random uppercase hex
// characters. Uniqueness is enforced by the database index; callers retry
// with a fresh number on conflict.
func GenerateTransactionNumber() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return fmt.Sprintf("TXN-%s-%s", time.Now().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
