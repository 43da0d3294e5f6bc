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

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// Find finds the stock row for a product in a store
func (r *GormStockLevelRepository) Find(ctx context.Context, productID, storeID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindForUpdate finds the stock row holding an exclusive row lock until the
// surrounding transaction commits. Callers must be inside a transaction
// scope or the lock is released immediately.
func (r *GormStockLevelRepository) FindForUpdate(ctx context.Context, productID, storeID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// GetOrCreateForUpdate returns the locked stock row, creating it at zero
// quantity when no row exists yet for the product-store combination.
func (r *GormStockLevelRepository) GetOrCreateForUpdate(ctx context.Context, productID, storeID uuid.UUID) (*inventory.StockLevel, error) {
	level, err := r.FindForUpdate(ctx, productID, storeID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewStockLevel(productID, storeID)
	if err != nil {
		return nil, err
	}

	// Use ON CONFLICT to handle a concurrent insert of the same row
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	return r.FindForUpdate(ctx, productID, storeID)
}

// FindByStore finds all stock rows for a store
func (r *GormStockLevelRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*inventory.StockLevel, error) {
	var levels []*inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("store_id = ?", storeID),
		filter,
	)

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindLowStock finds stock rows at or below their reorder level, ordered
// by store then product. A nil storeID searches across all stores.
func (r *GormStockLevelRepository) FindLowStock(ctx context.Context, storeID *uuid.UUID) ([]*inventory.StockLevel, error) {
	var levels []*inventory.StockLevel
	query := r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
		Where("quantity <= reorder_level")

	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	if err := query.Order("store_id ASC, product_id ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Save creates or updates a stock row
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// applyFilter applies filter options to the query
func (r *GormStockLevelRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "low_stock":
			if value == true {
				query = query.Where("quantity <= reorder_level")
			}
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockLevelSortFields, "updated_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
