package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/pos/backend/internal/application/catalog"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles product, category and store endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateProduct registers a new product
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// UpdatePrice changes a product's list price
// PUT /api/v1/products/:id/price
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req catalogapp.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalogService.UpdatePrice(c.Request.Context(), uuid.MustParse(idReq.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetProduct retrieves a product by ID, or by SKU via ?sku=
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// ListProducts lists products with search and pagination
// GET /api/v1/products?search=...&category_id=...
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	if sku := c.Query("sku"); sku != "" {
		product, err := h.catalogService.GetProductBySKU(c.Request.Context(), sku)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, product)
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		filter.Filters["category_id"] = categoryID
	}

	page, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CreateCategory creates a product category
// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// ListCategories lists all categories
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	categories, err := h.catalogService.ListCategories(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}

// CreateStore registers a retail location
// POST /api/v1/stores
func (h *CatalogHandler) CreateStore(c *gin.Context) {
	var req catalogapp.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	store, err := h.catalogService.CreateStore(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, store)
}

// GetStore retrieves a store by ID
// GET /api/v1/stores/:id
func (h *CatalogHandler) GetStore(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	store, err := h.catalogService.GetStore(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}

// ListStores lists all stores
// GET /api/v1/stores
func (h *CatalogHandler) ListStores(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	stores, err := h.catalogService.ListStores(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stores)
}
