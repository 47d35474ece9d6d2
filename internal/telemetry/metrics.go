package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeterProvider registers a Prometheus-backed MeterProvider and Go runtime metrics.
// It returns the /metrics handler and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		return nil, nil, err
	}

	return promhttp.Handler(), mp.Shutdown, nil
}

// Metrics are the business counters recorded by the services.
type Metrics struct {
	ordersCreated   metric.Int64Counter
	orderValue      metric.Int64Counter
	webhookEvents   metric.Int64Counter
	paymentOrders   metric.Int64Counter
	paymentVerifies metric.Int64Counter
}

// NewMetrics creates instruments on meter. A nil meter yields no-op instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("cartify")
	}
	m := &Metrics{}
	var err error
	if m.ordersCreated, err = meter.Int64Counter("cartify_orders_created_total",
		metric.WithDescription("Orders created through checkout")); err != nil {
		return nil, err
	}
	if m.orderValue, err = meter.Int64Counter("cartify_order_value_minor_units_total",
		metric.WithDescription("Sum of order totals in minor currency units")); err != nil {
		return nil, err
	}
	if m.webhookEvents, err = meter.Int64Counter("cartify_webhook_events_total",
		metric.WithDescription("Webhook deliveries by outcome")); err != nil {
		return nil, err
	}
	if m.paymentOrders, err = meter.Int64Counter("cartify_payment_orders_total",
		metric.WithDescription("Payment provider orders by outcome")); err != nil {
		return nil, err
	}
	if m.paymentVerifies, err = meter.Int64Counter("cartify_payment_verifications_total",
		metric.WithDescription("Payment signature verifications by outcome")); err != nil {
		return nil, err
	}
	return m, nil
}

// NopMetrics is used by tests and by callers that do not export metrics.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(nil)
	return m
}

func (m *Metrics) OrderCreated(ctx context.Context, currency string, totalCents int64) {
	attrs := metric.WithAttributes(attribute.String("currency", currency))
	m.ordersCreated.Add(ctx, 1, attrs)
	m.orderValue.Add(ctx, totalCents, attrs)
}

func (m *Metrics) WebhookEvent(ctx context.Context, status string) {
	m.webhookEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) PaymentOrder(ctx context.Context, outcome string) {
	m.paymentOrders.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) PaymentVerification(ctx context.Context, outcome string) {
	m.paymentVerifies.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
