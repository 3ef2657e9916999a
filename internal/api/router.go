package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/payment-system/payment-router/internal/handlers"
	"github.com/akylbek/payment-system/payment-router/internal/service"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

const ServiceName = "payment-router"

func NewRouter(orchestrator *service.Orchestrator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
	})

	paymentHandler := handlers.NewPaymentHandler(orchestrator)
	r.POST("/payments", paymentHandler.ProcessPayment)

	txHandler := handlers.NewTransactionHandler(orchestrator.Ledger())
	r.GET("/transactions", txHandler.ListTransactions)
	r.GET("/transactions/stats", txHandler.GetStats)
	r.GET("/transactions/:id", txHandler.GetTransaction)
	r.DELETE("/transactions", txHandler.ClearTransactions)

	configHandler := handlers.NewConfigHandler(orchestrator)
	r.GET("/config", configHandler.GetConfig)
	r.PATCH("/config", configHandler.UpdateConfig)

	return r
}
