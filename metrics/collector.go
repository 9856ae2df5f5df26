package metrics

import (
	"context"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	"github.com/marcelsud/payment-gateway-orchestrator/notify"
)

// GatewaySource is the read side of the router
type GatewaySource interface {
	GatewayHealth() []gateway.Health
	GatewayMetrics() []gateway.Metrics
	Summary() gateway.Summary
}

// MonitoringSource is the read side of the monitoring engine
type MonitoringSource interface {
	GetHealthStatus() monitoring.HealthStatus
	GetActiveAlerts() []monitoring.Alert
}

// ServiceCollector builds snapshots from the in-process router and engine
type ServiceCollector struct {
	gateways      GatewaySource
	monitor       MonitoringSource
	notifications func() notify.Stats
	now           func() time.Time
}

func NewServiceCollector(gateways GatewaySource, monitor MonitoringSource) *ServiceCollector {
	return &ServiceCollector{gateways: gateways, monitor: monitor, now: time.Now}
}

// WithNotifier adds the notifier counters to every snapshot
func (c *ServiceCollector) WithNotifier(n *notify.Notifier) *ServiceCollector {
	c.notifications = n.Stats
	return c
}

// Collect gathers the current state. It only reads in-memory state.
func (c *ServiceCollector) Collect(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	counters := make(map[gateway.ID]gateway.Metrics)
	for _, m := range c.gateways.GatewayMetrics() {
		counters[m.Gateway] = m
	}
	var gws []GatewaySnapshot
	for _, h := range c.gateways.GatewayHealth() {
		m := counters[h.Gateway]
		gws = append(gws, GatewaySnapshot{
			Gateway:               h.Gateway,
			Healthy:               h.Healthy,
			ConsecutiveFailures:   h.ConsecutiveFailures,
			SuccessfulRequests:    m.SuccessfulRequests,
			FailedRequests:        m.FailedRequests,
			AverageResponseTimeMs: m.AverageResponseTimeMs,
		})
	}

	alerts := map[string]int64{
		monitoring.Low.String():      0,
		monitoring.Medium.String():   0,
		monitoring.High.String():     0,
		monitoring.Critical.String(): 0,
	}
	for _, a := range c.monitor.GetActiveAlerts() {
		alerts[a.Severity.String()]++
	}

	s := Snapshot{
		Gateways:     gws,
		Summary:      c.gateways.Summary(),
		Health:       c.monitor.GetHealthStatus().Overall,
		ActiveAlerts: alerts,
		Timestamp:    c.now(),
	}
	if c.notifications != nil {
		stats := c.notifications()
		s.Notifications = &stats
	}
	return s, nil
}
