package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-router/internal/amount"
	"github.com/akylbek/payment-system/payment-router/internal/api"
	"github.com/akylbek/payment-system/payment-router/internal/config"
	"github.com/akylbek/payment-system/payment-router/internal/events"
	"github.com/akylbek/payment-system/payment-router/internal/explain"
	"github.com/akylbek/payment-system/payment-router/internal/interfaces"
	"github.com/akylbek/payment-system/payment-router/internal/ledger"
	"github.com/akylbek/payment-system/payment-router/internal/repository"
	"github.com/akylbek/payment-system/payment-router/internal/risk"
	"github.com/akylbek/payment-system/payment-router/internal/service"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize telemetry
	if err := telemetry.InitTelemetry(api.ServiceName, cfg.JaegerEndpoint); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Payment Router")

	engine, err := risk.NewEngine(cfg.Risk)
	if err != nil {
		telemetry.Logger.Fatal("Invalid risk config", zap.Error(err))
	}
	txLedger := ledger.New()
	analyzer := amount.NewAnalyzer(txLedger, cfg.AnalyzerOptions()...)

	opts := service.Options{ExplainTimeout: cfg.ExplainTimeout}

	// PostgreSQL archive
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		archive := repository.NewTransactionArchive(db)
		if err := archive.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		opts.Archive = archive
	}

	// NATS explainer, cached in Redis when available
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()

		var explainer interfaces.Explainer = explain.NewNATSExplainer(nc, explain.DefaultSubject)
		if cfg.RedisURL != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr: cfg.RedisURL,
			})
			defer redisClient.Close()
			explainer = explain.NewCachedExplainer(explainer, redisClient, cfg.ExplainCacheTTL)
		}
		opts.Explainer = explainer
	} else {
		telemetry.Logger.Info("NATS_URL not set, explanations use the local fallback")
	}

	// Kafka decision events
	if cfg.KafkaBrokers != "" {
		kafkaWriter := events.NewWriter(cfg.KafkaBrokers)
		defer kafkaWriter.Close()
		opts.Publisher = events.NewKafkaPublisher(kafkaWriter)
	}

	orchestrator := service.NewOrchestrator(engine, analyzer, txLedger, opts)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.KafkaBrokers != "" {
		go orchestrator.ConsumePaymentRequests(consumerCtx, cfg.KafkaBrokers)
	}

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(orchestrator),
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Payment Router starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	orchestrator.Wait()

	telemetry.Logger.Info("Server exited")
}
