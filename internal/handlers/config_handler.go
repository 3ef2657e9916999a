package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-router/internal/risk"
	"github.com/akylbek/payment-system/payment-router/internal/service"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

type ConfigHandler struct {
	orchestrator *service.Orchestrator
}

func NewConfigHandler(orchestrator *service.Orchestrator) *ConfigHandler {
	return &ConfigHandler{orchestrator: orchestrator}
}

func (h *ConfigHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.Config())
}

// UpdateConfig applies a partial risk config. Omitted fields are unchanged.
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var update risk.ConfigUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg, err := h.orchestrator.UpdateConfig(update)
	if errors.Is(err, risk.ErrInvalidConfig) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		telemetry.Logger.Error("Failed to update risk config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update config"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}
