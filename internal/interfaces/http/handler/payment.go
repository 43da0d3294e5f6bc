package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	paymentapp "github.com/pos/backend/internal/application/payment"
	mpesa "github.com/pos/backend/internal/infrastructure/payment"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles M-Pesa payment endpoints
type PaymentHandler struct {
	BaseHandler
	mpesaService *paymentapp.MpesaService
	logger       *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(mpesaService *paymentapp.MpesaService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{mpesaService: mpesaService, logger: logger}
}

// InitiateSTKPush starts an M-Pesa payment for a transaction
// POST /api/v1/payments/mpesa
func (h *PaymentHandler) InitiateSTKPush(c *gin.Context) {
	var req paymentapp.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pay, err := h.mpesaService.InitiateSTKPush(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, pay)
}

// GetByTransaction retrieves the payment attached to a transaction
// GET /api/v1/sales/:id/payment
func (h *PaymentHandler) GetByTransaction(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	pay, err := h.mpesaService.GetByTransaction(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pay)
}

// Callback receives the Daraja payment result. Daraja retries on anything
// other than HTTP 200, so every outcome including an internal failure is
// acknowledged; failures are logged for reconciliation instead.
// POST /api/v1/payments/mpesa/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	var payload mpesa.MpesaCallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("malformed mpesa callback", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	stk := payload.Body.StkCallback
	req := paymentapp.CallbackRequest{
		CheckoutRequestID: stk.CheckoutRequestID,
		MerchantRequestID: stk.MerchantRequestID,
		ResultCode:        stk.ResultCode,
		ResultDesc:        stk.ResultDesc,
		Receipt:           payload.ReceiptNumber(),
	}

	if err := h.mpesaService.HandleCallback(c.Request.Context(), req); err != nil {
		h.logger.Error("mpesa callback processing failed",
			zap.String("checkout_request_id", stk.CheckoutRequestID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
