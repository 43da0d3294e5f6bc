package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// MockTransactionRepository implements sales.TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByNumber(ctx context.Context, number string) (*sales.Transaction, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindReturnsForSale(ctx context.Context, originalID uuid.UUID) ([]*sales.Transaction, error) {
	args := m.Called(ctx, originalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sales.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*sales.Transaction, int64, error) {
	args := m.Called(ctx, storeID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*sales.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) FindByCashier(ctx context.Context, cashierID uuid.UUID, filter shared.Filter) ([]*sales.Transaction, int64, error) {
	args := m.Called(ctx, cashierID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*sales.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) DailySummary(ctx context.Context, storeID uuid.UUID, day time.Time) (*sales.DailySummary, error) {
	args := m.Called(ctx, storeID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.DailySummary), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, transaction *sales.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// newReadOnlySalesHandler builds a SalesHandler whose service only ever
// reaches the transaction repository. Write paths are covered by the
// application layer tests.
func newReadOnlySalesHandler(txnRepo *MockTransactionRepository) *SalesHandler {
	scope := salesapp.NewNoOpTransactionScope(txnRepo, nil, nil, nil, nil)
	service := salesapp.NewSalesService(scope, nil, salesapp.Config{
		VATRate: decimal.RequireFromString("16.00"),
	})
	return NewSalesHandler(service)
}

func newSaleFixture(t *testing.T) *sales.Transaction {
	t.Helper()
	txn, err := sales.NewSale(uuid.New(), uuid.New(), []sales.SaleLine{
		{ProductID: uuid.New(), ProductName: "Oil Filter", Quantity: 2, UnitPrice: decimal.RequireFromString("500.00")},
	}, decimal.RequireFromString("16.00"), decimal.RequireFromString("5.00"), sales.PaymentMethodCash)
	require.NoError(t, err)
	return txn
}

func TestSalesHandlerCreateSale(t *testing.T) {
	t.Run("401 without authentication", func(t *testing.T) {
		h := newReadOnlySalesHandler(new(MockTransactionRepository))

		body, _ := json.Marshal(map[string]any{
			"store_id":       uuid.New(),
			"payment_method": "cash",
			"items":          []map[string]any{{"product_id": uuid.New(), "quantity": 1, "unit_price": "500.00"}},
		})
		c, w := newTestContext(t, "POST", "/sales")
		c.Request = httptest.NewRequest("POST", "/sales", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.CreateSale(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("400 on empty items", func(t *testing.T) {
		h := newReadOnlySalesHandler(new(MockTransactionRepository))

		body, _ := json.Marshal(map[string]any{
			"store_id":       uuid.New(),
			"payment_method": "cash",
			"items":          []map[string]any{},
		})
		c, w := newTestContext(t, "POST", "/sales")
		c.Request = httptest.NewRequest("POST", "/sales", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		setAuthContext(c, uuid.New(), "staff")

		h.CreateSale(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("400 on unknown payment method", func(t *testing.T) {
		h := newReadOnlySalesHandler(new(MockTransactionRepository))

		body, _ := json.Marshal(map[string]any{
			"store_id":       uuid.New(),
			"payment_method": "barter",
			"items":          []map[string]any{{"product_id": uuid.New(), "quantity": 1, "unit_price": "500.00"}},
		})
		c, w := newTestContext(t, "POST", "/sales")
		c.Request = httptest.NewRequest("POST", "/sales", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		setAuthContext(c, uuid.New(), "staff")

		h.CreateSale(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSalesHandlerGetTransaction(t *testing.T) {
	t.Run("returns transaction with totals", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		h := newReadOnlySalesHandler(txnRepo)
		txn := newSaleFixture(t)
		txnRepo.On("FindByID", mock.Anything, txn.ID).Return(txn, nil)

		c, w := newTestContext(t, "GET", "/sales/"+txn.ID.String())
		c.Params = gin.Params{{Key: "id", Value: txn.ID.String()}}

		h.GetTransaction(c)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.True(t, resp.Success)

		payload, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var got salesapp.TransactionResponse
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("1000.00")))
		assert.True(t, got.VATAmount.Equal(decimal.RequireFromString("160.00")))
		assert.True(t, got.Total.Equal(decimal.RequireFromString("1160.00")))
	})

	t.Run("404 when missing", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		h := newReadOnlySalesHandler(txnRepo)
		id := uuid.New()
		txnRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		c, w := newTestContext(t, "GET", "/sales/"+id.String())
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		h.GetTransaction(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("400 on malformed ID", func(t *testing.T) {
		h := newReadOnlySalesHandler(new(MockTransactionRepository))

		c, w := newTestContext(t, "GET", "/sales/nope")
		c.Params = gin.Params{{Key: "id", Value: "nope"}}

		h.GetTransaction(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSalesHandlerListByStore(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	h := newReadOnlySalesHandler(txnRepo)
	storeID := uuid.New()
	txn := newSaleFixture(t)
	txnRepo.On("FindByStore", mock.Anything, storeID, mock.AnythingOfType("shared.Filter")).
		Return([]*sales.Transaction{txn}, int64(1), nil)

	c, w := newTestContext(t, "GET", "/stores/"+storeID.String()+"/sales?type=sale")
	c.Params = gin.Params{{Key: "id", Value: storeID.String()}}

	h.ListByStore(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)

	// The type filter from the query string must reach the repository
	filter := txnRepo.Calls[0].Arguments.Get(2).(shared.Filter)
	assert.Equal(t, "sale", filter.Filters["type"])
}

func TestSalesHandlerDailySummary(t *testing.T) {
	t.Run("parses the date parameter", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		h := newReadOnlySalesHandler(txnRepo)
		storeID := uuid.New()
		day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		txnRepo.On("DailySummary", mock.Anything, storeID, day).Return(&sales.DailySummary{
			StoreID:         storeID,
			Date:            day,
			SaleCount:       4,
			ReturnCount:     1,
			GrossTotal:      decimal.RequireFromString("4640.00"),
			VATTotal:        decimal.RequireFromString("640.00"),
			CommissionTotal: decimal.RequireFromString("232.00"),
		}, nil)

		c, w := newTestContext(t, "GET", "/stores/"+storeID.String()+"/sales/summary?date=2026-01-15")
		c.Params = gin.Params{{Key: "id", Value: storeID.String()}}

		h.DailySummary(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"sale_count":4`)
		assert.Contains(t, w.Body.String(), "2026-01-15")
	})

	t.Run("400 on malformed date", func(t *testing.T) {
		h := newReadOnlySalesHandler(new(MockTransactionRepository))
		storeID := uuid.New()

		c, w := newTestContext(t, "GET", "/stores/"+storeID.String()+"/sales/summary?date=15-01-2026")
		c.Params = gin.Params{{Key: "id", Value: storeID.String()}}

		h.DailySummary(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
