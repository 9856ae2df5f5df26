package metrics

import (
	"context"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	"github.com/marcelsud/payment-gateway-orchestrator/notify"
)

// Snapshot is the state of the orchestrator at collection time
type Snapshot struct {
	Gateways     []GatewaySnapshot         `json:"gateways"`
	Summary      gateway.Summary           `json:"summary"`
	Health       monitoring.Classification `json:"health"`
	ActiveAlerts map[string]int64          `json:"active_alerts"`
	// Notifications is nil when no notifier is configured
	Notifications *notify.Stats `json:"notifications,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// GatewaySnapshot joins the health and the counters of one gateway
type GatewaySnapshot struct {
	Gateway               gateway.ID `json:"gateway"`
	Healthy               bool       `json:"healthy"`
	ConsecutiveFailures   int        `json:"consecutive_failures"`
	SuccessfulRequests    int64      `json:"successful_requests"`
	FailedRequests        int64      `json:"failed_requests"`
	AverageResponseTimeMs float64    `json:"average_response_time_ms"`
}

// Collector defines the interface for collecting metrics from the orchestrator
type Collector interface {
	Collect(ctx context.Context) (Snapshot, error)
}
