package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-router/internal/amount"
	"github.com/akylbek/payment-system/payment-router/internal/explain"
	"github.com/akylbek/payment-system/payment-router/internal/interfaces"
	"github.com/akylbek/payment-system/payment-router/internal/ledger"
	"github.com/akylbek/payment-system/payment-router/internal/models"
	"github.com/akylbek/payment-system/payment-router/internal/risk"
	"github.com/akylbek/payment-system/payment-router/internal/routing"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

const (
	PaymentRequestTopic   = "payment.requested"
	DefaultExplainTimeout = 5 * time.Second
	sideEffectTimeout     = 10 * time.Second
)

// Options wires the optional collaborators. Nil fields are skipped.
type Options struct {
	Explainer      interfaces.Explainer
	Archive        interfaces.TransactionArchive
	Publisher      interfaces.DecisionPublisher
	ExplainTimeout time.Duration
}

// Orchestrator runs the per-payment pipeline: amount context, risk score,
// route, explanation, ledger append, then archive and decision event.
type Orchestrator struct {
	engine   *risk.Engine
	analyzer *amount.Analyzer
	ledger   *ledger.Ledger
	opts     Options

	pending sync.WaitGroup
}

func NewOrchestrator(engine *risk.Engine, analyzer *amount.Analyzer, l *ledger.Ledger, opts Options) *Orchestrator {
	if opts.ExplainTimeout <= 0 {
		opts.ExplainTimeout = DefaultExplainTimeout
	}
	return &Orchestrator{
		engine:   engine,
		analyzer: analyzer,
		ledger:   l,
		opts:     opts,
	}
}

func (o *Orchestrator) Ledger() *ledger.Ledger {
	return o.ledger
}

func (o *Orchestrator) Config() risk.Config {
	return o.engine.Config()
}

func (o *Orchestrator) UpdateConfig(u risk.ConfigUpdate) (risk.Config, error) {
	cfg, err := o.engine.UpdateConfig(u)
	if err != nil {
		return cfg, err
	}
	telemetry.Logger.Info("Risk config updated",
		zap.Float64("threshold", cfg.Threshold),
		zap.String("large_amount_threshold", cfg.LargeAmountThreshold.String()),
		zap.Strings("suspicious_domains", cfg.SuspiciousDomains),
		zap.Duration("rapid_fire_window", cfg.RapidFireWindow),
	)
	return cfg, nil
}

// ProcessPayment scores, routes and records a payment. Explanation,
// archive and publish failures are logged and never fail the payment.
func (o *Orchestrator) ProcessPayment(ctx context.Context, req *models.PaymentRequest) *models.Transaction {
	ctx, span := telemetry.Tracer.Start(ctx, "Orchestrator.ProcessPayment")
	defer span.End()

	data := &models.FraudAnalysisData{
		Amount:    req.Amount,
		Currency:  req.Currency,
		Email:     req.Email,
		Domain:    risk.ExtractDomain(req.Email),
		Source:    req.Source,
		Timestamp: time.Now(),
	}
	amountCtx := o.analyzer.Build(req.Email, req.Amount, req.Currency)
	data.AmountContext = &amountCtx

	result := o.engine.AnalyzeRisk(data)
	decision := routing.Route(result)

	span.SetAttributes(
		attribute.Float64("risk.score", result.RiskScore),
		attribute.Bool("risk.high", result.IsHighRisk),
		attribute.String("route.provider", string(decision.Provider)),
	)

	text := o.explain(ctx, data, result, decision)

	tx := o.ledger.Create(models.TransactionFields{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Email:       req.Email,
		Source:      req.Source,
		Provider:    decision.Provider,
		Status:      decision.Status,
		RiskScore:   result.RiskScore,
		Explanation: text,
		Metadata: &models.TransactionMetadata{
			TriggeredRules: result.TriggeredRules,
			IsHighRisk:     result.IsHighRisk,
		},
	})
	o.ledger.Append(tx)

	telemetry.ObservePayment(tx, result.TriggeredRules)
	telemetry.Logger.Info("Payment routed",
		zap.String("transaction_id", tx.ID),
		zap.String("amount", tx.Amount.String()),
		zap.String("currency", tx.Currency),
		zap.String("provider", string(tx.Provider)),
		zap.String("status", string(tx.Status)),
		zap.Float64("risk_score", tx.RiskScore),
		zap.Strings("triggered_rules", result.TriggeredRules),
	)

	o.dispatch(tx.Clone())

	return tx
}

func (o *Orchestrator) explain(ctx context.Context, data *models.FraudAnalysisData, result models.RiskResult, decision routing.Decision) string {
	if o.opts.Explainer == nil {
		telemetry.ExplanationFallbacksTotal.Inc()
		return explain.Fallback(result, decision.Provider, decision.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.ExplainTimeout)
	defer cancel()

	text, err := o.opts.Explainer.Explain(ctx, data, result, decision.Provider, decision.Status)
	if err == nil && text != "" {
		return text
	}
	if err == nil {
		err = explain.ErrEmptyExplanation
	}

	telemetry.ExplanationFallbacksTotal.Inc()
	telemetry.Logger.Warn("Explanation unavailable, using fallback",
		zap.String("email_domain", data.Domain),
		zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
		zap.Error(err),
	)
	return explain.Fallback(result, decision.Provider, decision.Status)
}

// dispatch archives and publishes tx off the request path.
func (o *Orchestrator) dispatch(tx *models.Transaction) {
	if o.opts.Archive == nil && o.opts.Publisher == nil {
		return
	}

	o.pending.Add(1)
	go func() {
		defer o.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if o.opts.Archive != nil {
			if err := o.opts.Archive.Insert(ctx, tx); err != nil {
				telemetry.Logger.Error("Failed to archive transaction",
					zap.String("transaction_id", tx.ID),
					zap.Error(err),
				)
			}
		}
		if o.opts.Publisher != nil {
			if err := o.opts.Publisher.PublishDecision(ctx, tx); err != nil {
				telemetry.Logger.Error("Failed to publish decision",
					zap.String("transaction_id", tx.ID),
					zap.Error(err),
				)
			}
		}
	}()
}

// Wait blocks until in-flight archive and publish calls finish.
func (o *Orchestrator) Wait() {
	o.pending.Wait()
}

// ConsumePaymentRequests processes payment requests arriving on Kafka
// until ctx is cancelled.
func (o *Orchestrator) ConsumePaymentRequests(ctx context.Context, kafkaBrokers string) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{kafkaBrokers},
		Topic:    PaymentRequestTopic,
		GroupID:  "payment-router",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	telemetry.Logger.Info("Started consuming payment requests", zap.String("topic", PaymentRequestTopic))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			telemetry.Logger.Error("Error reading message from Kafka", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		req, err := decodePaymentRequest(msg.Value)
		if err != nil {
			telemetry.Logger.Error("Error unmarshaling payment request",
				zap.ByteString("key", msg.Key),
				zap.Error(err),
			)
			continue
		}

		o.ProcessPayment(ctx, req)
	}
}

func decodePaymentRequest(raw []byte) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.Email == "" || len(req.Currency) != 3 {
		return nil, errors.New("payment request needs an email and a 3-letter currency")
	}
	return &req, nil
}
