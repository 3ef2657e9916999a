package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-router/internal/models"
	"github.com/akylbek/payment-system/payment-router/internal/service"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

type PaymentHandler struct {
	orchestrator *service.Orchestrator
}

func NewPaymentHandler(orchestrator *service.Orchestrator) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator}
}

// ProcessPayment scores and routes a payment. A blocked payment is still a
// successful request; the decision is in the returned transaction.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Warn("Error decoding payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	req.Currency = strings.ToUpper(req.Currency)

	tx := h.orchestrator.ProcessPayment(c.Request.Context(), &req)

	c.JSON(http.StatusOK, tx)
}
