package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/sales"
)

// CreateSaleRequest is the input for creating a sale
type CreateSaleRequest struct {
	StoreID        uuid.UUID         `json:"store_id" binding:"required"`
	CashierID      uuid.UUID         `json:"-"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string            `json:"payment_method" binding:"required,oneof=cash mpesa card"`
	CustomerName   string            `json:"customer_name"`
	CustomerPhone  string            `json:"customer_phone"`
	IdempotencyKey string            `json:"-"`
	IPAddress      string            `json:"-"`
}

// SaleItemRequest is one line of a sale request. The unit price is what the
// till displayed to the customer; it must match the current catalog price.
type SaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// ReturnItemRequest selects one product and quantity to return
type ReturnItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// ProcessReturnRequest is the input for returning a sale. An empty item list
// returns everything from the sale that has not been returned yet.
type ProcessReturnRequest struct {
	TransactionID uuid.UUID           `json:"transaction_id" binding:"required"`
	CashierID     uuid.UUID           `json:"-"`
	Items         []ReturnItemRequest `json:"items" binding:"omitempty,dive"`
	Reason        string              `json:"reason"`
	IPAddress     string              `json:"-"`
}

// TransactionItemResponse is one line of a transaction response
type TransactionItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TransactionResponse is the API representation of a transaction
type TransactionResponse struct {
	ID                    uuid.UUID                 `json:"id"`
	TransactionNumber     string                    `json:"transaction_number"`
	Type                  string                    `json:"type"`
	StoreID               uuid.UUID                 `json:"store_id"`
	CashierID             uuid.UUID                 `json:"cashier_id"`
	OriginalTransactionID *uuid.UUID                `json:"original_transaction_id,omitempty"`
	Items                 []TransactionItemResponse `json:"items"`
	Subtotal              decimal.Decimal           `json:"subtotal"`
	VATRate               decimal.Decimal           `json:"vat_rate"`
	VATAmount             decimal.Decimal           `json:"vat_amount"`
	Total                 decimal.Decimal           `json:"total"`
	CommissionAmount      decimal.Decimal           `json:"commission_amount"`
	PaymentMethod         string                    `json:"payment_method"`
	Reason                string                    `json:"reason,omitempty"`
	CreatedAt             time.Time                 `json:"created_at"`
}

// ToTransactionResponse converts a transaction aggregate to its response form
func ToTransactionResponse(t *sales.Transaction) TransactionResponse {
	items := make([]TransactionItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransactionItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	return TransactionResponse{
		ID:                    t.ID,
		TransactionNumber:     t.TransactionNumber,
		Type:                  string(t.Type),
		StoreID:               t.StoreID,
		CashierID:             t.CashierID,
		OriginalTransactionID: t.OriginalTransactionID,
		Items:                 items,
		Subtotal:              t.Subtotal,
		VATRate:               t.VATRate,
		VATAmount:             t.VATAmount,
		Total:                 t.Total,
		CommissionAmount:      t.CommissionAmount,
		PaymentMethod:         string(t.PaymentMethod),
		Reason:                t.Reason,
		CreatedAt:             t.CreatedAt,
	}
}

// DailySummaryResponse is the API representation of a day's totals
type DailySummaryResponse struct {
	StoreID         uuid.UUID       `json:"store_id"`
	Date            string          `json:"date"`
	SaleCount       int64           `json:"sale_count"`
	ReturnCount     int64           `json:"return_count"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	VATTotal        decimal.Decimal `json:"vat_total"`
	CommissionTotal decimal.Decimal `json:"commission_total"`
}

// ToDailySummaryResponse converts a summary row to its response form
func ToDailySummaryResponse(s *sales.DailySummary) DailySummaryResponse {
	return DailySummaryResponse{
		StoreID:         s.StoreID,
		Date:            s.Date.Format("2006-01-02"),
		SaleCount:       s.SaleCount,
		ReturnCount:     s.ReturnCount,
		GrossTotal:      s.GrossTotal,
		VATTotal:        s.VATTotal,
		CommissionTotal: s.CommissionTotal,
	}
}
