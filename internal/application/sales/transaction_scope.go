package sales

import (
	"context"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a sale
// touches. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and commit
// or roll back atomically. Row locks taken inside the scope are held until
// the scope ends.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a sale or
// return mutates, scoped to the current transaction. A sale writes four
// aggregates in one transaction: the transaction row with its items, the
// stock rows it decrements, the cashier's commission balance, and the audit
// entry.
type TransactionalRepositories interface {
	TransactionRepo() sales.TransactionRepository
	StockLevelRepo() inventory.StockLevelRepository
	UserRepo() identity.UserRepository
	ProductRepo() catalog.ProductRepository
	AuditRepo() audit.AuditLogRepository
}

// NoOpTransactionScope runs the function without a real transaction. This is
// useful for testing.
type NoOpTransactionScope struct {
	transactionRepo sales.TransactionRepository
	stockLevelRepo  inventory.StockLevelRepository
	userRepo        identity.UserRepository
	productRepo     catalog.ProductRepository
	auditRepo       audit.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo sales.TransactionRepository,
	stockLevelRepo inventory.StockLevelRepository,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	auditRepo audit.AuditLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		stockLevelRepo:  stockLevelRepo,
		userRepo:        userRepo,
		productRepo:     productRepo,
		auditRepo:       auditRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransactionRepo returns the sales transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() sales.TransactionRepository {
	return s.transactionRepo
}

// StockLevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockLevelRepo() inventory.StockLevelRepository {
	return s.stockLevelRepo
}

// UserRepo returns the user repository.
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
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
