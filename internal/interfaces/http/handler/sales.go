package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client supplied key that dedupes retried sales
const IdempotencyKeyHeader = "Idempotency-Key"

// SalesHandler handles sales transaction endpoints
type SalesHandler struct {
	BaseHandler
	salesService *salesapp.SalesService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(salesService *salesapp.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// CreateSale records a sale and decrements stock atomically
// POST /api/v1/sales
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cashierID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	req.CashierID = cashierID
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	req.IPAddress = c.ClientIP()

	txn, err := h.salesService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, txn)
}

// ProcessReturn reverses a completed sale and restocks its items
// POST /api/v1/sales/:id/return
func (h *SalesHandler) ProcessReturn(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	// The body is optional; an empty one returns the whole sale.
	var body struct {
		Items  []salesapp.ReturnItemRequest `json:"items" binding:"omitempty,dive"`
		Reason string                       `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cashierID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := salesapp.ProcessReturnRequest{
		TransactionID: uuid.MustParse(idReq.ID),
		CashierID:     cashierID,
		Items:         body.Items,
		Reason:        body.Reason,
		IPAddress:     c.ClientIP(),
	}

	txn, err := h.salesService.ProcessReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txn)
}

// GetTransaction retrieves a single transaction with its items
// GET /api/v1/sales/:id
func (h *SalesHandler) GetTransaction(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.salesService.GetByID(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txn)
}

// ListByStore lists a store's transactions with pagination
// GET /api/v1/stores/:id/sales
func (h *SalesHandler) ListByStore(c *gin.Context) {
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
	if txnType := c.Query("type"); txnType != "" {
		filter.Filters["type"] = txnType
	}
	if method := c.Query("payment_method"); method != "" {
		filter.Filters["payment_method"] = method
	}

	page, err := h.salesService.ListByStore(c.Request.Context(), uuid.MustParse(idReq.ID), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// DailySummary reports a store's sale and return totals for one day
// GET /api/v1/stores/:id/sales/summary?date=2026-01-15
func (h *SalesHandler) DailySummary(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := h.salesService.GetDailySummary(c.Request.Context(), uuid.MustParse(idReq.ID), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
