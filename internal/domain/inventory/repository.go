package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// StockLevelRepository is the persistence port for stock rows. The ForUpdate
// variants must acquire an exclusive row lock held until the surrounding
// transaction commits; callers invoke them only inside a transaction scope.
type StockLevelRepository interface {
	Find(ctx context.Context, productID, storeID uuid.UUID) (*StockLevel, error)
	FindForUpdate(ctx context.Context, productID, storeID uuid.UUID) (*StockLevel, error)
	// GetOrCreateForUpdate returns the locked row, creating it at zero
	// quantity when no row exists yet for the product-store combination.
	GetOrCreateForUpdate(ctx context.Context, productID, storeID uuid.UUID) (*StockLevel, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*StockLevel, error)
	FindLowStock(ctx context.Context, storeID *uuid.UUID) ([]*StockLevel, error)
	Save(ctx context.Context, level *StockLevel) error
}

// StockTransferRepository is the persistence port for transfer requests
type StockTransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockTransfer, error)
	FindByStatus(ctx context.Context, status TransferStatus, filter shared.Filter) ([]*StockTransfer, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*StockTransfer, error)
	Save(ctx context.Context, transfer *StockTransfer) error
}
