package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
)

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByIDForUpdate finds a transfer holding an exclusive row lock until the
// surrounding transaction commits, so two approvals of the same transfer
// cannot race.
func (r *GormStockTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockTransfer, error) {
	var transfer inventory.StockTransfer
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByStatus finds transfers in the given status
func (r *GormStockTransferRepository) FindByStatus(ctx context.Context, status inventory.TransferStatus, filter shared.Filter) ([]*inventory.StockTransfer, error) {
	var transfers []*inventory.StockTransfer
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByStore finds transfers where the store is either source or destination
func (r *GormStockTransferRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*inventory.StockTransfer, error) {
	var transfers []*inventory.StockTransfer
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockTransfer{}).
			Where("from_store_id = ? OR to_store_id = ?", storeID, storeID),
		filter,
	)

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save creates or updates a transfer
func (r *GormStockTransferRepository) Save(ctx context.Context, transfer *inventory.StockTransfer) error {
	return r.db.WithContext(ctx).Save(transfer).Error
}

// applyFilter applies filter options to the query
func (r *GormStockTransferRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransferSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

var _ inventory.StockTransferRepository = (*GormStockTransferRepository)(nil)
