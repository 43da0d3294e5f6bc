package persistence

import (
	"context"

	"gorm.io/gorm"

	appsales "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/sales"
)

// GormSalesTransactionScope implements the sales TransactionScope using GORM
// transactions. It provides atomic execution of multiple repository
// operations.
type GormSalesTransactionScope struct {
	db *gorm.DB
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope.
func NewGormSalesTransactionScope(db *gorm.DB) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormSalesTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormSalesTransactionalRepositories provides access to all repositories a
// sale touches within one transaction.
type gormSalesTransactionalRepositories struct {
	tx *gorm.DB
}

// TransactionRepo returns the sales transaction repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) TransactionRepo() sales.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// StockLevelRepo returns the stock level repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// UserRepo returns the user repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// AuditRepo returns the audit log repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) AuditRepo() audit.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure GormSalesTransactionScope implements TransactionScope
var _ appsales.TransactionScope = (*GormSalesTransactionScope)(nil)

// Ensure gormSalesTransactionalRepositories implements TransactionalRepositories
var _ appsales.TransactionalRepositories = (*gormSalesTransactionalRepositories)(nil)
