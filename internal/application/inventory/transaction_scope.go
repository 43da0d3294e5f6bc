package inventory

import (
	"context"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// All repository operations inside Execute share one database transaction
// and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories an inventory
// operation touches, scoped to the current transaction. A transfer approval
// writes four rows in one transaction: the transfer itself, both stock rows,
// and the audit entry.
type TransactionalRepositories interface {
	StockLevelRepo() inventory.StockLevelRepository
	TransferRepo() inventory.StockTransferRepository
	ProductRepo() catalog.ProductRepository
	AuditRepo() audit.AuditLogRepository
}

// NoOpTransactionScope runs the function without a real transaction. This is
// useful for testing.
type NoOpTransactionScope struct {
	stockLevelRepo inventory.StockLevelRepository
	transferRepo   inventory.StockTransferRepository
	productRepo    catalog.ProductRepository
	auditRepo      audit.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockLevelRepo inventory.StockLevelRepository,
	transferRepo inventory.StockTransferRepository,
	productRepo catalog.ProductRepository,
	auditRepo audit.AuditLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockLevelRepo: stockLevelRepo,
		transferRepo:   transferRepo,
		productRepo:    productRepo,
		auditRepo:      auditRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockLevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockLevelRepo() inventory.StockLevelRepository {
	return s.stockLevelRepo
}

// TransferRepo returns the stock transfer repository.
func (s *NoOpTransactionScope) TransferRepo() inventory.StockTransferRepository {
	return s.transferRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// AuditRepo returns the audit log repository.
func (s *NoOpTransactionScope) AuditRepo() audit.AuditLogRepository {
	return s.auditRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
