package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction with its line items by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Transaction, error) {
	var txn sales.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// FindByNumber finds a transaction by its receipt number
func (r *GormTransactionRepository) FindByNumber(ctx context.Context, number string) (*sales.Transaction, error) {
	var txn sales.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&txn, "transaction_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// FindReturnsForSale finds every return recorded against the given sale.
// An empty slice means the sale has not been returned at all.
func (r *GormTransactionRepository) FindReturnsForSale(ctx context.Context, originalID uuid.UUID) ([]*sales.Transaction, error) {
	var txns []*sales.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("original_transaction_id = ? AND type = ?", originalID, sales.TransactionTypeReturn).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindByStore finds transactions for a store with their total count
func (r *GormTransactionRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*sales.Transaction, int64, error) {
	return r.findPaginated(ctx, "store_id = ?", storeID, filter)
}

// FindByCashier finds transactions recorded by a cashier with their total count
func (r *GormTransactionRepository) FindByCashier(ctx context.Context, cashierID uuid.UUID, filter shared.Filter) ([]*sales.Transaction, int64, error) {
	return r.findPaginated(ctx, "cashier_id = ?", cashierID, filter)
}

func (r *GormTransactionRepository) findPaginated(ctx context.Context, condition string, value uuid.UUID, filter shared.Filter) ([]*sales.Transaction, int64, error) {
	var total int64
	if err := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&sales.Transaction{}).Where(condition, value),
		filter,
	).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []*sales.Transaction
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&sales.Transaction{}).Where(condition, value),
		filter,
	).Preload("Items")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if err := query.Order(orderBy + " " + orderDir).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// DailySummary aggregates one store's transactions for the given day
func (r *GormTransactionRepository) DailySummary(ctx context.Context, storeID uuid.UUID, day time.Time) (*sales.DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var row struct {
		SaleCount       int64
		ReturnCount     int64
		GrossTotal      decimal.Decimal
		VATTotal        decimal.Decimal
		CommissionTotal decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&sales.Transaction{}).
		Select(
			"COUNT(*) FILTER (WHERE type = 'sale') AS sale_count, "+
				"COUNT(*) FILTER (WHERE type = 'return') AS return_count, "+
				"COALESCE(SUM(total), 0) AS gross_total, "+
				"COALESCE(SUM(vat_amount), 0) AS vat_total, "+
				"COALESCE(SUM(commission_amount), 0) AS commission_total",
		).
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, start, end).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	return &sales.DailySummary{
		StoreID:         storeID,
		Date:            start,
		SaleCount:       row.SaleCount,
		ReturnCount:     row.ReturnCount,
		GrossTotal:      row.GrossTotal,
		VATTotal:        row.VATTotal,
		CommissionTotal: row.CommissionTotal,
	}, nil
}

// Save persists the transaction together with its line items. A duplicate
// transaction number surfaces as shared.ErrDuplicateTransactionID so the
// caller can retry with a fresh number.
func (r *GormTransactionRepository) Save(ctx context.Context, txn *sales.Transaction) error {
	if err := r.db.WithContext(ctx).Save(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateTransactionID
		}
		return err
	}
	return nil
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("transaction_number ILIKE ? OR customer_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		}
	}

	return query
}

var _ sales.TransactionRepository = (*GormTransactionRepository)(nil)
