package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles stock level and transfer endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// AdjustStock applies a manual stock correction
// POST /api/v1/inventory/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	req.UserID = userID
	req.IPAddress = c.ClientIP()

	level, err := h.inventoryService.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// GetStock retrieves one product's stock level at one store
// GET /api/v1/inventory/stock?product_id=...&store_id=...
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, "Invalid store_id")
		return
	}

	level, err := h.inventoryService.GetStock(c.Request.Context(), productID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ListByStore lists all stock levels at a store
// GET /api/v1/stores/:id/stock
func (h *InventoryHandler) ListByStore(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if productID := c.Query("product_id"); productID != "" {
		filter.Filters["product_id"] = productID
	}
	if c.Query("low_stock") == "true" {
		filter.Filters["low_stock"] = true
	}

	levels, err := h.inventoryService.ListByStore(c.Request.Context(), uuid.MustParse(idReq.ID), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}

// ListLowStock lists stock levels at or below their reorder level
// GET /api/v1/inventory/low-stock?store_id=...
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	var storeID *uuid.UUID
	if storeIDStr := c.Query("store_id"); storeIDStr != "" {
		parsed, err := uuid.Parse(storeIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid store_id")
			return
		}
		storeID = &parsed
	}

	levels, err := h.inventoryService.ListLowStock(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}

// RequestTransfer opens a pending transfer between two stores
// POST /api/v1/transfers
func (h *InventoryHandler) RequestTransfer(c *gin.Context) {
	var req inventoryapp.RequestTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	req.UserID = userID
	req.IPAddress = c.ClientIP()

	transfer, err := h.inventoryService.RequestTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, transfer)
}

// ApproveTransfer approves a pending transfer and moves the stock
// POST /api/v1/transfers/:id/approve
func (h *InventoryHandler) ApproveTransfer(c *gin.Context) {
	h.decideTransfer(c, h.inventoryService.ApproveTransfer)
}

// RejectTransfer rejects a pending transfer, leaving stock untouched
// POST /api/v1/transfers/:id/reject
func (h *InventoryHandler) RejectTransfer(c *gin.Context) {
	h.decideTransfer(c, h.inventoryService.RejectTransfer)
}

func (h *InventoryHandler) decideTransfer(
	c *gin.Context,
	decide func(ctx context.Context, req inventoryapp.DecideTransferRequest) (*inventoryapp.TransferResponse, error),
) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := inventoryapp.DecideTransferRequest{
		TransferID: uuid.MustParse(idReq.ID),
		Reason:     body.Reason,
		UserID:     userID,
		IPAddress:  c.ClientIP(),
	}

	transfer, err := decide(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfer)
}

// ListTransfers lists transfers, optionally filtered by status
// GET /api/v1/transfers?status=pending
func (h *InventoryHandler) ListTransfers(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if productID := c.Query("product_id"); productID != "" {
		filter.Filters["product_id"] = productID
	}

	status := inventory.TransferStatus(c.DefaultQuery("status", string(inventory.TransferStatusPending)))
	switch status {
	case inventory.TransferStatusPending, inventory.TransferStatusApproved, inventory.TransferStatusRejected:
	default:
		h.BadRequest(c, "Invalid status, expected pending, approved or rejected")
		return
	}

	transfers, err := h.inventoryService.ListTransfers(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfers)
}
