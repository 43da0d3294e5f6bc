package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
)

// CatalogService manages products, categories and stores. These are plain
// reference data; none of the operations here touch stock or money, so no
// transaction scope is needed.
type CatalogService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storeRepo    catalog.StoreRepository
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storeRepo catalog.StoreRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
		logger:       logger,
	}
}

// CreateProduct registers a new sellable product under an existing category
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category does not exist")
		}
		return nil, err
	}

	product, err := catalog.NewProduct(req.Name, req.CategoryID, req.Price)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	product.SetSKU(req.SKU)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdatePrice changes a product's list price. Items on past transactions
// keep the price they were sold at.
func (s *CatalogService) UpdatePrice(ctx context.Context, productID uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.ChangePrice(req.Price); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProductBySKU retrieves a product by its SKU/barcode
func (s *CatalogService) GetProductBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts lists products matching the filter with pagination
func (s *CatalogService) ListProducts(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}

	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CreateCategory creates a new product category
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ListCategories lists all categories
func (s *CatalogService) ListCategories(ctx context.Context, filter shared.Filter) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, ToCategoryResponse(&categories[i]))
	}
	return responses, nil
}

// CreateStore registers a new retail location
func (s *CatalogService) CreateStore(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	store, err := catalog.NewStore(req.Name, req.Address, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}

	s.logger.Info("store created",
		zap.String("store_id", store.ID.String()),
		zap.String("name", store.Name),
	)

	resp := ToStoreResponse(store)
	return &resp, nil
}

// GetStore retrieves a store by ID
func (s *CatalogService) GetStore(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

// ListStores lists all stores
func (s *CatalogService) ListStores(ctx context.Context, filter shared.Filter) ([]StoreResponse, error) {
	stores, err := s.storeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]StoreResponse, 0, len(stores))
	for i := range stores {
		responses = append(responses, ToStoreResponse(&stores[i]))
	}
	return responses, nil
}
