package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const DefaultJaegerEndpoint = "jaeger:4318"

// Logger and Tracer are no-ops until InitTelemetry runs, so packages can log
// and trace unconditionally in tests.
var (
	Tracer      trace.Tracer = otel.Tracer("payment-router")
	Logger      *zap.Logger  = zap.NewNop()
	ServiceName string
)

// Probes and scrapes are neither traced nor logged.
var untracedPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// InitTelemetry initializes OpenTelemetry tracing and structured logging.
// An empty jaegerEndpoint falls back to DefaultJaegerEndpoint.
func InitTelemetry(serviceName, jaegerEndpoint string) error {
	ServiceName = serviceName

	// Initialize structured logger
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Logger = logger

	if jaegerEndpoint == "" {
		jaegerEndpoint = DefaultJaegerEndpoint
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String("payments"),
			semconv.ServiceVersionKey.String("1.0.0"),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	// OTLP over HTTP
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(jaegerEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	// Upstream sampling decisions win; root spans are always sampled.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	Tracer = otel.Tracer(serviceName)

	Logger.Info("Telemetry initialized", zap.String("otlp_endpoint", jaegerEndpoint))
	return nil
}

// Shutdown flushes pending spans and log entries
func Shutdown(ctx context.Context) error {
	if tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
	}
	return Logger.Sync()
}

// TracingMiddleware traces, times and logs each routed request.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if _, skip := untracedPaths[route]; skip {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		// Continue the caller's trace if it sent one
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := Tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		spanCtx := span.SpanContext()
		if spanCtx.IsValid() {
			c.Header("X-Trace-ID", spanCtx.TraceID().String())
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		ObserveHTTPRequest(c.Request.Method, route, status, duration)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			Logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			Logger.Warn("HTTP request", fields...)
		default:
			Logger.Info("HTTP request", fields...)
		}
	}
}
