package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/inventory"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. It provides atomic execution of multiple
// repository operations.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope.
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormInventoryTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormInventoryTransactionalRepositories provides access to the repositories
// an inventory operation touches within one transaction.
type gormInventoryTransactionalRepositories struct {
	tx *gorm.DB
}

// StockLevelRepo returns the stock level repository scoped to the current transaction.
func (r *gormInventoryTransactionalRepositories) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// TransferRepo returns the stock transfer repository scoped to the current transaction.
func (r *gormInventoryTransactionalRepositories) TransferRepo() inventory.StockTransferRepository {
	return NewGormStockTransferRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormInventoryTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// AuditRepo returns the audit log repository scoped to the current transaction.
func (r *gormInventoryTransactionalRepositories) AuditRepo() audit.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure GormInventoryTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)

// Ensure gormInventoryTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormInventoryTransactionalRepositories)(nil)
