package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/pos/backend/internal/application/catalog"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
)

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockCategoryRepository implements catalog.CategoryRepository for testing
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

// MockStoreRepository implements catalog.StoreRepository for testing
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Store), args.Error(1)
}

func (m *MockStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Store, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Store), args.Error(1)
}

func (m *MockStoreRepository) Save(ctx context.Context, store *catalog.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

type catalogHandlerFixture struct {
	handler      *CatalogHandler
	productRepo  *MockProductRepository
	categoryRepo *MockCategoryRepository
	storeRepo    *MockStoreRepository
}

func newCatalogHandlerFixture() *catalogHandlerFixture {
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	storeRepo := new(MockStoreRepository)
	service := catalogapp.NewCatalogService(productRepo, categoryRepo, storeRepo, zap.NewNop())
	return &catalogHandlerFixture{
		handler:      NewCatalogHandler(service),
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
	}
}

func TestCatalogHandlerCreateProduct(t *testing.T) {
	t.Run("creates product", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		categoryID := uuid.New()
		category, _ := catalog.NewCategory("Filters", "")
		f.categoryRepo.On("FindByID", mock.Anything, categoryID).Return(category, nil)
		f.productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		body, _ := json.Marshal(map[string]any{
			"name":        "Oil Filter",
			"category_id": categoryID,
			"price":       "450.00",
			"sku":         "FLT-001",
		})
		c, w := newTestContext(t, "POST", "/products")
		c.Request = httptest.NewRequest("POST", "/products", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.CreateProduct(c)

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		categoryID := uuid.New()
		f.categoryRepo.On("FindByID", mock.Anything, categoryID).Return(nil, shared.ErrNotFound)

		body, _ := json.Marshal(map[string]any{
			"name":        "Oil Filter",
			"category_id": categoryID,
			"price":       "450.00",
		})
		c, w := newTestContext(t, "POST", "/products")
		c.Request = httptest.NewRequest("POST", "/products", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.CreateProduct(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_CATEGORY", resp.Error.Code)
		f.productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		f := newCatalogHandlerFixture()

		body, _ := json.Marshal(map[string]any{
			"category_id": uuid.New(),
			"price":       "450.00",
		})
		c, w := newTestContext(t, "POST", "/products")
		c.Request = httptest.NewRequest("POST", "/products", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.CreateProduct(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogHandlerGetProduct(t *testing.T) {
	t.Run("returns product", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		product, err := catalog.NewProduct("Brake Pads", uuid.New(), decimal.RequireFromString("1200.00"))
		require.NoError(t, err)
		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		c, w := newTestContext(t, "GET", "/products/"+product.ID.String())
		c.Params = gin.Params{{Key: "id", Value: product.ID.String()}}

		f.handler.GetProduct(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Brake Pads")
	})

	t.Run("404 when missing", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		id := uuid.New()
		f.productRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		c, w := newTestContext(t, "GET", "/products/"+id.String())
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		f.handler.GetProduct(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("400 on malformed ID", func(t *testing.T) {
		f := newCatalogHandlerFixture()

		c, w := newTestContext(t, "GET", "/products/not-a-uuid")
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		f.handler.GetProduct(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogHandlerListProducts(t *testing.T) {
	f := newCatalogHandlerFixture()
	categoryID := uuid.New()
	p1, _ := catalog.NewProduct("Oil Filter", categoryID, decimal.RequireFromString("450.00"))
	p2, _ := catalog.NewProduct("Air Filter", categoryID, decimal.RequireFromString("650.00"))
	f.productRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return([]catalog.Product{*p1, *p2}, nil)
	f.productRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return(int64(2), nil)

	c, w := newTestContext(t, "GET", "/products?search=filter")

	f.handler.ListProducts(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestCatalogHandlerUpdatePrice(t *testing.T) {
	t.Run("changes price", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		product, _ := catalog.NewProduct("Oil Filter", uuid.New(), decimal.RequireFromString("450.00"))
		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.productRepo.On("Save", mock.Anything, product).Return(nil)

		body, _ := json.Marshal(map[string]any{"price": "500.00"})
		c, w := newTestContext(t, "PUT", "/products/"+product.ID.String()+"/price")
		c.Request = httptest.NewRequest("PUT", "/products/"+product.ID.String()+"/price", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: product.ID.String()}}

		f.handler.UpdatePrice(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("500.00")))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		product, _ := catalog.NewProduct("Oil Filter", uuid.New(), decimal.RequireFromString("450.00"))
		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		body, _ := json.Marshal(map[string]any{"price": "-1.00"})
		c, w := newTestContext(t, "PUT", "/products/"+product.ID.String()+"/price")
		c.Request = httptest.NewRequest("PUT", "/products/"+product.ID.String()+"/price", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: product.ID.String()}}

		f.handler.UpdatePrice(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCatalogHandlerStores(t *testing.T) {
	t.Run("creates store", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		f.storeRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Store")).Return(nil)

		body, _ := json.Marshal(map[string]any{
			"name":    "Nairobi CBD",
			"address": "Moi Avenue",
			"phone":   "+254700000001",
		})
		c, w := newTestContext(t, "POST", "/stores")
		c.Request = httptest.NewRequest("POST", "/stores", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		f.handler.CreateStore(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Nairobi CBD")
	})

	t.Run("lists stores", func(t *testing.T) {
		f := newCatalogHandlerFixture()
		s1, _ := catalog.NewStore("Nairobi CBD", "", "", "")
		s2, _ := catalog.NewStore("Mombasa Road", "", "", "")
		f.storeRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
			Return([]catalog.Store{*s1, *s2}, nil)

		c, w := newTestContext(t, "GET", "/stores")

		f.handler.ListStores(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Mombasa Road")
	})
}
