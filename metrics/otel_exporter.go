package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export in Prometheus format
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector
	registration  metric.Registration

	meter              metric.Meter
	healthyGauge       metric.Int64ObservableGauge
	requestsCounter    metric.Int64ObservableCounter
	responseTimeGauge  metric.Float64ObservableGauge
	failuresGauge      metric.Int64ObservableGauge
	activeAlertsGauge  metric.Int64ObservableGauge
	systemHealthGauge  metric.Int64ObservableGauge
	notificationsGauge metric.Int64ObservableGauge
}

/* NewOTelExporter creates an exporter backed by its own Prometheus registry
 * All instruments are observed from one Collect per scrape
 */
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(meterProvider)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meterProvider.Meter("payment-gateway-orchestrator", metric.WithInstrumentationVersion("1.0.0")),
	}
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}
	return oe, nil
}

func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.healthyGauge, err = oe.meter.Int64ObservableGauge(
		"payment.gateway.healthy",
		metric.WithDescription("1 when the gateway is healthy, 0 otherwise"),
	)
	if err != nil {
		return fmt.Errorf("creating healthy gauge: %w", err)
	}

	oe.requestsCounter, err = oe.meter.Int64ObservableCounter(
		"payment.gateway.requests",
		metric.WithDescription("Requests sent to the gateway by outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating requests counter: %w", err)
	}

	oe.responseTimeGauge, err = oe.meter.Float64ObservableGauge(
		"payment.gateway.response_time",
		metric.WithDescription("Smoothed gateway response time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("creating response time gauge: %w", err)
	}

	oe.failuresGauge, err = oe.meter.Int64ObservableGauge(
		"payment.gateway.consecutive_failures",
		metric.WithDescription("Failures since the last success"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return fmt.Errorf("creating consecutive failures gauge: %w", err)
	}

	oe.activeAlertsGauge, err = oe.meter.Int64ObservableGauge(
		"payment.alerts.active",
		metric.WithDescription("Unresolved alerts by severity"),
		metric.WithUnit("{alerts}"),
	)
	if err != nil {
		return fmt.Errorf("creating active alerts gauge: %w", err)
	}

	oe.systemHealthGauge, err = oe.meter.Int64ObservableGauge(
		"payment.system.health",
		metric.WithDescription("Overall classification: 1 healthy, 2 degraded, 3 unhealthy"),
	)
	if err != nil {
		return fmt.Errorf("creating system health gauge: %w", err)
	}

	oe.notificationsGauge, err = oe.meter.Int64ObservableGauge(
		"payment.notifications",
		metric.WithDescription("Alert notifications by outcome"),
		metric.WithUnit("{notifications}"),
	)
	if err != nil {
		return fmt.Errorf("creating notifications gauge: %w", err)
	}

	oe.registration, err = oe.meter.RegisterCallback(oe.observe,
		oe.healthyGauge, oe.requestsCounter, oe.responseTimeGauge, oe.failuresGauge,
		oe.activeAlertsGauge, oe.systemHealthGauge, oe.notificationsGauge,
	)
	if err != nil {
		return fmt.Errorf("registering callback: %w", err)
	}
	return nil
}

// observe reports one snapshot to every instrument
func (oe *OTelExporter) observe(ctx context.Context, o metric.Observer) error {
	s, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	for _, g := range s.Gateways {
		id := attribute.String("gateway", g.Gateway.String())
		healthy := int64(0)
		if g.Healthy {
			healthy = 1
		}
		o.ObserveInt64(oe.healthyGauge, healthy, metric.WithAttributes(id))
		o.ObserveInt64(oe.requestsCounter, g.SuccessfulRequests, metric.WithAttributes(id, attribute.String("outcome", "success")))
		o.ObserveInt64(oe.requestsCounter, g.FailedRequests, metric.WithAttributes(id, attribute.String("outcome", "failure")))
		o.ObserveFloat64(oe.responseTimeGauge, g.AverageResponseTimeMs, metric.WithAttributes(id))
		o.ObserveInt64(oe.failuresGauge, int64(g.ConsecutiveFailures), metric.WithAttributes(id))
	}
	for severity, n := range s.ActiveAlerts {
		o.ObserveInt64(oe.activeAlertsGauge, n, metric.WithAttributes(attribute.String("severity", severity)))
	}
	o.ObserveInt64(oe.systemHealthGauge, int64(s.Health))

	if s.Notifications != nil {
		for outcome, n := range map[string]int64{
			"queued":    s.Notifications.Queued,
			"delivered": s.Notifications.Delivered,
			"failed":    s.Notifications.Failed,
			"dropped":   s.Notifications.Dropped,
		} {
			o.ObserveInt64(oe.notificationsGauge, n, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}
	return nil
}

// ServeHTTP serves the exporter registry in Prometheus text format
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.registration != nil {
		if err := oe.registration.Unregister(); err != nil {
			return fmt.Errorf("unregistering callback: %w", err)
		}
	}
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
