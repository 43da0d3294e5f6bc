package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// DailySummary aggregates a day's transactions for one store
type DailySummary struct {
	StoreID         uuid.UUID       `json:"store_id"`
	Date            time.Time       `json:"date"`
	SaleCount       int64           `json:"sale_count"`
	ReturnCount     int64           `json:"return_count"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	VATTotal        decimal.Decimal `json:"vat_total"`
	CommissionTotal decimal.Decimal `json:"commission_total"`
}

// TransactionRepository is the persistence port for transactions. Save
// persists the aggregate together with its line items; a duplicate
// transaction number must surface as shared.ErrDuplicateTransactionID so the
// caller can regenerate and retry.
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByNumber(ctx context.Context, number string) (*Transaction, error)
	FindReturnsForSale(ctx context.Context, originalID uuid.UUID) ([]*Transaction, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*Transaction, int64, error)
	FindByCashier(ctx context.Context, cashierID uuid.UUID, filter shared.Filter) ([]*Transaction, int64, error)
	DailySummary(ctx context.Context, storeID uuid.UUID, day time.Time) (*DailySummary, error)
	Save(ctx context.Context, transaction *Transaction) error
}
