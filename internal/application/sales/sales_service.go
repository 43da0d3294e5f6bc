package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

const (
	// maxNumberRetries bounds regeneration attempts after a transaction
	// number collision
	maxNumberRetries = 3

	// idempotencyTTL is how long a processed idempotency key is remembered
	idempotencyTTL = 24 * time.Hour
)

// Config carries the store-wide sale parameters
type Config struct {
	VATRate decimal.Decimal
}

// SalesService handles sale and return operations. Every mutation runs in a
// single database transaction through the TransactionScope: stock rows are
// locked and decremented, the transaction row is written, the cashier's
// commission balance is credited under a row lock, and the audit entry is
// appended. Any failure rolls the whole operation back.
type SalesService struct {
	scope            TransactionScope
	userRepo         identity.UserRepository
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	config           Config
}

// NewSalesService creates a new SalesService
func NewSalesService(scope TransactionScope, userRepo identity.UserRepository, config Config) *SalesService {
	return &SalesService{
		scope:    scope,
		userRepo: userRepo,
		config:   config,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SalesService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables duplicate-request detection on CreateSale
func (s *SalesService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// CreateSale processes a sale atomically. Stock for every line is locked and
// deducted, VAT and commission are computed, the cashier's balance is
// credited, and the audit entry is written, all in one transaction. When any
// line has insufficient stock the whole sale fails and no stock moves.
func (s *SalesService) CreateSale(ctx context.Context, req CreateSaleRequest) (*TransactionResponse, error) {
	cashier, err := s.userRepo.FindByID(ctx, req.CashierID)
	if err != nil {
		return nil, err
	}
	if !cashier.IsActive || !cashier.Role.CanProcessSales() {
		return nil, shared.ErrForbidden
	}
	if !cashier.CanAccessStore(req.StoreID) {
		return nil, shared.ErrForbidden
	}

	if req.IdempotencyKey != "" && s.idempotencyStore != nil {
		first, err := s.idempotencyStore.MarkProcessed(ctx, req.IdempotencyKey, idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !first {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "This sale has already been processed")
		}
	}

	var txn *sales.Transaction
	var lowStockEvents []shared.DomainEvent
	err = s.executeWithNumberRetry(ctx, func(repos TransactionalRepositories) error {
		lowStockEvents = nil

		saleLines, err := s.buildSaleLines(ctx, repos, req.Items)
		if err != nil {
			return err
		}

		// Lock stock rows in product order so concurrent sales cannot
		// deadlock on each other.
		for _, line := range saleLines {
			stock, err := repos.StockLevelRepo().FindForUpdate(ctx, line.ProductID, req.StoreID)
			if err != nil {
				return err
			}
			if err := stock.Deduct(line.Quantity); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().Save(ctx, stock); err != nil {
				return err
			}
			lowStockEvents = append(lowStockEvents, stock.GetDomainEvents()...)
			stock.ClearDomainEvents()
		}

		txn, err = sales.NewSale(req.StoreID, req.CashierID, saleLines,
			s.config.VATRate, cashier.CommissionRate, sales.PaymentMethod(req.PaymentMethod))
		if err != nil {
			return err
		}
		txn.CustomerName = req.CustomerName
		txn.CustomerPhone = req.CustomerPhone

		if err := repos.TransactionRepo().Save(ctx, txn); err != nil {
			return err
		}

		// Re-read the cashier under an exclusive lock so concurrent sales
		// serialize on the commission balance.
		lockedCashier, err := repos.UserRepo().FindByIDForUpdate(ctx, req.CashierID)
		if err != nil {
			return err
		}
		if err := lockedCashier.CreditCommission(txn.CommissionAmount); err != nil {
			return err
		}
		if err := repos.UserRepo().Save(ctx, lockedCashier); err != nil {
			return err
		}

		entry, err := audit.NewAuditLog(req.CashierID, audit.ActionSale, "Transaction", txn.ID.String(),
			fmt.Sprintf("Sale %s for %s", txn.TransactionNumber, txn.Total.StringFixed(2)), req.IPAddress)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		// The sale did not happen, so the key must not block a retry.
		s.releaseIdempotencyKey(ctx, req.IdempotencyKey)
		return nil, err
	}

	s.publishDomainEvents(ctx, lowStockEvents)
	s.publishDomainEvents(ctx, txn.GetDomainEvents())
	txn.ClearDomainEvents()

	response := ToTransactionResponse(txn)
	return &response, nil
}

func (s *SalesService) releaseIdempotencyKey(ctx context.Context, key string) {
	if key == "" || s.idempotencyStore == nil {
		return
	}
	_ = s.idempotencyStore.Release(ctx, key)
}

// ProcessReturn reverses part or all of a completed sale. The return
// transaction carries negated amounts and zero commission; every returned
// item is restocked in the same transaction. Each product can only be
// returned up to the quantity sold, counting earlier partial returns.
func (s *SalesService) ProcessReturn(ctx context.Context, req ProcessReturnRequest) (*TransactionResponse, error) {
	cashier, err := s.userRepo.FindByID(ctx, req.CashierID)
	if err != nil {
		return nil, err
	}
	if !cashier.IsActive || !cashier.Role.CanProcessSales() {
		return nil, shared.ErrForbidden
	}

	var ret *sales.Transaction
	err = s.executeWithNumberRetry(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.TransactionRepo().FindByID(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if !cashier.CanAccessStore(original.StoreID) {
			return shared.ErrForbidden
		}

		priorReturns, err := repos.TransactionRepo().FindReturnsForSale(ctx, original.ID)
		if err != nil {
			return err
		}

		lines, err := buildReturnLines(original, priorReturns, req.Items)
		if err != nil {
			return err
		}

		ret, err = sales.NewReturn(original, req.CashierID, lines, req.Reason)
		if err != nil {
			return err
		}

		if err := repos.TransactionRepo().Save(ctx, ret); err != nil {
			return err
		}

		// Restock in the same product order a sale locks in.
		for _, item := range ret.Items {
			stock, err := repos.StockLevelRepo().GetOrCreateForUpdate(ctx, item.ProductID, original.StoreID)
			if err != nil {
				return err
			}
			if err := stock.Restock(item.Quantity); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().Save(ctx, stock); err != nil {
				return err
			}
		}

		entry, err := audit.NewAuditLog(req.CashierID, audit.ActionReturn, "Transaction", ret.ID.String(),
			fmt.Sprintf("Return %s against %s", ret.TransactionNumber, original.TransactionNumber), req.IPAddress)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ret.GetDomainEvents())
	ret.ClearDomainEvents()

	response := ToTransactionResponse(ret)
	return &response, nil
}

// buildReturnLines resolves the requested return into concrete lines bounded
// by what is still returnable, sorted by product so the restock loop takes
// stock locks in the same order sales do. An empty request returns every
// outstanding quantity.
func buildReturnLines(original *sales.Transaction, priorReturns []*sales.Transaction, items []ReturnItemRequest) ([]sales.ReturnLine, error) {
	remaining := make(map[uuid.UUID]int64, len(original.Items))
	names := make(map[uuid.UUID]string, len(original.Items))
	for _, item := range original.Items {
		remaining[item.ProductID] += item.Quantity
		names[item.ProductID] = item.ProductName
	}
	for _, prior := range priorReturns {
		for _, item := range prior.Items {
			remaining[item.ProductID] -= item.Quantity
		}
	}

	requested := make(map[uuid.UUID]int64, len(items))
	if len(items) == 0 {
		for id, qty := range remaining {
			if qty > 0 {
				requested[id] = qty
			}
		}
		if len(requested) == 0 {
			return nil, shared.NewDomainError("ALREADY_RETURNED", "This sale has already been returned in full")
		}
	} else {
		for _, item := range items {
			if _, ok := names[item.ProductID]; !ok {
				return nil, shared.NewDomainError("INVALID_RETURN_ITEM", "Product was not part of the original sale")
			}
			requested[item.ProductID] += item.Quantity
		}
	}

	lines := make([]sales.ReturnLine, 0, len(requested))
	for id, qty := range requested {
		if qty > remaining[id] {
			return nil, shared.NewDomainError("RETURN_EXCEEDS_SALE",
				fmt.Sprintf("Cannot return %d of %s, only %d remain returnable", qty, names[id], remaining[id]))
		}
		lines = append(lines, sales.ReturnLine{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines, nil
}

// GetByID retrieves a transaction by ID
func (s *SalesService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	var response TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txn, err := repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		response = ToTransactionResponse(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByStore retrieves a store's transactions with pagination
func (s *SalesService) ListByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (*shared.Paginated[TransactionResponse], error) {
	var result *shared.Paginated[TransactionResponse]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txns, total, err := repos.TransactionRepo().FindByStore(ctx, storeID, filter)
		if err != nil {
			return err
		}
		items := make([]TransactionResponse, 0, len(txns))
		for _, txn := range txns {
			items = append(items, ToTransactionResponse(txn))
		}
		paginated := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
		result = &paginated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetDailySummary aggregates a store's transactions for one day
func (s *SalesService) GetDailySummary(ctx context.Context, storeID uuid.UUID, day time.Time) (*DailySummaryResponse, error) {
	var response DailySummaryResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		summary, err := repos.TransactionRepo().DailySummary(ctx, storeID, day)
		if err != nil {
			return err
		}
		response = ToDailySummaryResponse(summary)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// buildSaleLines validates the request lines against the catalog and merges
// repeated products into single lines, sorted by product ID to give every
// sale the same lock acquisition order. Each requested unit price must match
// the catalog; a till running on stale prices fails here instead of charging
// the wrong amount.
func (s *SalesService) buildSaleLines(ctx context.Context, repos TransactionalRepositories, items []SaleItemRequest) ([]sales.SaleLine, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := repos.ProductRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	quantities := make(map[uuid.UUID]int64, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.ErrNotFound
		}
		if !item.UnitPrice.Equal(product.Price) {
			return nil, shared.NewDomainError("PRICE_MISMATCH",
				fmt.Sprintf("Unit price %s for %s does not match the catalog price %s",
					item.UnitPrice.StringFixed(2), product.Name, product.Price.StringFixed(2)))
		}
		quantities[item.ProductID] += item.Quantity
	}

	lines := make([]sales.SaleLine, 0, len(quantities))
	for id, qty := range quantities {
		product := byID[id]
		lines = append(lines, sales.SaleLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    qty,
			UnitPrice:   product.Price,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines, nil
}

// executeWithNumberRetry runs fn in a fresh transaction scope, retrying when
// the insert lost a transaction number collision. Postgres aborts the whole
// transaction on a unique violation, so the retry must restart the scope
// rather than re-issue the insert; each restart builds a new aggregate and
// with it a new number.
func (s *SalesService) executeWithNumberRetry(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	var err error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err = s.scope.Execute(ctx, fn)
		if err == nil || !errors.Is(err, shared.ErrDuplicateTransactionID) {
			return err
		}
	}
	return err
}

// publishDomainEvents publishes the given domain events
func (s *SalesService) publishDomainEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
