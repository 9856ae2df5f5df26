package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	gatewaymocks "github.com/marcelsud/payment-gateway-orchestrator/gateway/mocks"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	monitoringmocks "github.com/marcelsud/payment-gateway-orchestrator/monitoring/mocks"
)

func sources(t *testing.T) (*gatewaymocks.UseCase, *monitoringmocks.UseCase) {
	gw := gatewaymocks.NewUseCase(t)
	gw.On("GatewayHealth").Return([]gateway.Health{
		{Gateway: gateway.MercadoPago, Healthy: true},
		{Gateway: gateway.Decidir, Healthy: false, ConsecutiveFailures: 4},
	})
	gw.On("GatewayMetrics").Return([]gateway.Metrics{
		{Gateway: gateway.MercadoPago, TotalRequests: 10, SuccessfulRequests: 9, FailedRequests: 1, AverageResponseTimeMs: 120},
		{Gateway: gateway.Decidir, TotalRequests: 4, FailedRequests: 4, AverageResponseTimeMs: 900},
	})
	gw.On("Summary").Return(gateway.Summary{TotalGateways: 2, HealthyGateways: 1, UnhealthyGateways: 1, TotalRequests: 14})

	mon := monitoringmocks.NewUseCase(t)
	mon.On("GetHealthStatus").Return(monitoring.HealthStatus{Overall: monitoring.Degraded})
	mon.On("GetActiveAlerts").Return([]monitoring.Alert{
		{ID: "1", Severity: monitoring.High},
		{ID: "2", Severity: monitoring.High},
		{ID: "3", Severity: monitoring.Critical},
	})
	return gw, mon
}

func TestServiceCollector_Collect(t *testing.T) {
	t.Run("success - joins health and counters", func(t *testing.T) {
		gw, mon := sources(t)
		c := NewServiceCollector(gw, mon)
		c.now = func() time.Time { return time.Unix(100, 0) }

		s, err := c.Collect(context.Background())
		require.NoError(t, err)

		require.Len(t, s.Gateways, 2)
		assert.Equal(t, GatewaySnapshot{
			Gateway:               gateway.Decidir,
			ConsecutiveFailures:   4,
			FailedRequests:        4,
			AverageResponseTimeMs: 900,
		}, s.Gateways[1])
		assert.Equal(t, int64(9), s.Gateways[0].SuccessfulRequests)
		assert.Equal(t, monitoring.Degraded, s.Health)
		assert.Equal(t, map[string]int64{"low": 0, "medium": 0, "high": 2, "critical": 1}, s.ActiveAlerts)
		assert.Equal(t, 2, s.Summary.TotalGateways)
		assert.Nil(t, s.Notifications)
		assert.Equal(t, time.Unix(100, 0), s.Timestamp)
	})

	t.Run("error - cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewServiceCollector(gatewaymocks.NewUseCase(t), monitoringmocks.NewUseCase(t)).Collect(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOTelExporter(t *testing.T) {
	gw, mon := sources(t)
	exporter, err := NewOTelExporter(NewServiceCollector(gw, mon))
	require.NoError(t, err)
	defer exporter.Shutdown(context.Background())

	srv := httptest.NewServer(exporter.ServeHTTP())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "payment_gateway_healthy")
	assert.Contains(t, text, `gateway="decidir"`)
	assert.Contains(t, text, "payment_gateway_requests")
	assert.Contains(t, text, `outcome="failure"`)
	assert.Contains(t, text, "payment_gateway_response_time")
	assert.Contains(t, text, "payment_gateway_consecutive_failures")
	assert.Contains(t, text, "payment_alerts_active")
	assert.Contains(t, text, `severity="critical"`)
	assert.Contains(t, text, "payment_system_health")
}
