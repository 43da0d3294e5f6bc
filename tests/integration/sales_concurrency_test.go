// Package integration tests the sales flow against a real PostgreSQL
// instance, where row locks actually block.
package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/infrastructure/persistence"
)

// salesTestSetup provides a sales service wired to a real database
type salesTestSetup struct {
	DB      *TestDB
	Service *salesapp.SalesService
	StoreID uuid.UUID
}

func newSalesTestSetup(t *testing.T) *salesTestSetup {
	t.Helper()

	testDB := NewTestDB(t)
	storeID := testDB.CreateTestStore("Main Branch")

	scope := persistence.NewGormSalesTransactionScope(testDB.DB)
	userRepo := persistence.NewGormUserRepository(testDB.DB)
	service := salesapp.NewSalesService(scope, userRepo, salesapp.Config{
		VATRate: decimal.RequireFromString("16.00"),
	})

	return &salesTestSetup{
		DB:      testDB,
		Service: service,
		StoreID: storeID,
	}
}

// TestConcurrentSalesOfLastUnit races two cashiers for a product with a single
// unit in stock. Exactly one sale must win; the loser must be rejected for
// insufficient stock and leave no partial writes behind.
func TestConcurrentSalesOfLastUnit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSalesTestSetup(t)
	ctx := context.Background()

	price := decimal.RequireFromString("500.00")
	productID := setup.DB.CreateTestProduct("Oil Filter", price)
	setup.DB.CreateTestStock(productID, setup.StoreID, 1)

	cashiers := []uuid.UUID{
		setup.DB.CreateTestStaff("cashier1", setup.StoreID, decimal.RequireFromString("5.00")),
		setup.DB.CreateTestStaff("cashier2", setup.StoreID, decimal.RequireFromString("5.00")),
	}

	var wg sync.WaitGroup
	results := make([]error, len(cashiers))
	for i, cashierID := range cashiers {
		wg.Add(1)
		go func(i int, cashierID uuid.UUID) {
			defer wg.Done()
			_, results[i] = setup.Service.CreateSale(ctx, salesapp.CreateSaleRequest{
				StoreID:   setup.StoreID,
				CashierID: cashierID,
				Items: []salesapp.SaleItemRequest{
					{ProductID: productID, Quantity: 1, UnitPrice: price},
				},
				PaymentMethod: "cash",
			})
		}(i, cashierID)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		rejected++
		var stockErr *inventory.InsufficientStockError
		require.True(t, errors.As(err, &stockErr), "unexpected error: %v", err)
		assert.Equal(t, int64(0), stockErr.Available)
	}
	require.Equal(t, 1, succeeded, "exactly one sale must win the last unit")
	require.Equal(t, 1, rejected)

	var quantity int64
	err := setup.DB.DB.Raw(
		`SELECT quantity FROM stock_levels WHERE product_id = ? AND store_id = ?`,
		productID, setup.StoreID,
	).Scan(&quantity).Error
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)

	var count int64
	require.NoError(t, setup.DB.DB.Raw(`SELECT COUNT(*) FROM transactions`).Scan(&count).Error)
	assert.Equal(t, int64(1), count, "the rolled back sale must not leave a transaction row")
}

// TestSaleDeductsAndReturnRestocks walks a sale and a following partial return
// through a real database, checking the stock level end to end.
func TestSaleDeductsAndReturnRestocks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSalesTestSetup(t)
	ctx := context.Background()

	price := decimal.RequireFromString("120.00")
	productID := setup.DB.CreateTestProduct("Brake Pad", price)
	setup.DB.CreateTestStock(productID, setup.StoreID, 10)
	cashierID := setup.DB.CreateTestStaff("cashier1", setup.StoreID, decimal.RequireFromString("5.00"))

	sale, err := setup.Service.CreateSale(ctx, salesapp.CreateSaleRequest{
		StoreID:   setup.StoreID,
		CashierID: cashierID,
		Items: []salesapp.SaleItemRequest{
			{ProductID: productID, Quantity: 3, UnitPrice: price},
		},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	ret, err := setup.Service.ProcessReturn(ctx, salesapp.ProcessReturnRequest{
		TransactionID: sale.ID,
		CashierID:     cashierID,
		Items:         []salesapp.ReturnItemRequest{{ProductID: productID, Quantity: 1}},
		Reason:        "damaged",
	})
	require.NoError(t, err)
	assert.True(t, ret.Total.IsNegative())

	var quantity int64
	err = setup.DB.DB.Raw(
		`SELECT quantity FROM stock_levels WHERE product_id = ? AND store_id = ?`,
		productID, setup.StoreID,
	).Scan(&quantity).Error
	require.NoError(t, err)
	assert.Equal(t, int64(8), quantity)
}
