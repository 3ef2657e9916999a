package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/payment-system/payment-router/internal/ledger"
	"github.com/akylbek/payment-system/payment-router/internal/models"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

type TransactionHandler struct {
	ledger *ledger.Ledger
}

func NewTransactionHandler(l *ledger.Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: l}
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txs := h.ledger.Query(filter)

	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"count":        len(txs),
		"total":        h.ledger.Len(),
	})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")

	tx, ok := h.ledger.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ledger.ErrNotFound.Error(), "id": id})
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Stats())
}

func (h *TransactionHandler) ClearTransactions(c *gin.Context) {
	removed := h.ledger.Len()
	h.ledger.Clear()
	telemetry.Logger.Info("Transaction ledger cleared")

	c.JSON(http.StatusOK, gin.H{"status": "cleared", "removed": removed})
}

func parseFilter(c *gin.Context) (ledger.Filter, error) {
	f := ledger.Filter{
		Email:    c.Query("email"),
		Status:   models.Status(c.Query("status")),
		Provider: models.Provider(c.Query("provider")),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("unknown status %q", f.Status)
	}
	if f.Provider != "" && !f.Provider.Valid() {
		return f, fmt.Errorf("unknown provider %q", f.Provider)
	}

	var err error
	if f.StartDate, err = parseTime(c.Query("startDate")); err != nil {
		return f, fmt.Errorf("startDate: %w", err)
	}
	if f.EndDate, err = parseTime(c.Query("endDate")); err != nil {
		return f, fmt.Errorf("endDate: %w", err)
	}
	if f.SortBy, err = ledger.ParseSortField(c.Query("sortBy")); err != nil {
		return f, err
	}
	if f.SortOrder, err = ledger.ParseSortOrder(c.Query("sortOrder")); err != nil {
		return f, err
	}
	if f.Page, err = parsePositiveInt(c.Query("page")); err != nil {
		return f, fmt.Errorf("page: %w", err)
	}
	if f.Limit, err = parsePositiveInt(c.Query("limit")); err != nil {
		return f, fmt.Errorf("limit: %w", err)
	}
	return f, nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive integer, got %q", s)
	}
	return n, nil
}
