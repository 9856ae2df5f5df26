package catalog

import (
	"fmt"
	"net/url"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/adapters"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
)

// AdapterKind selects the adapter implementation for a gateway
type AdapterKind string

const (
	HTTPAdapter      AdapterKind = "http"
	SimulatedAdapter AdapterKind = "simulated"
)

// Simulation tunes a simulated gateway
type Simulation struct {
	SuccessRate float64 `yaml:"success_rate"`
	LatencyMs   int     `yaml:"latency_ms"`
	JitterMs    int     `yaml:"jitter_ms"`
}

/* Entry represents a gateway declared in gateways.yaml
 * Maps a gateway id to its capability profile and adapter settings
 */
type Entry struct {
	ID             gateway.ID  `yaml:"id"`
	Preference     int         `yaml:"preference"`
	MinAmount      float64     `yaml:"min_amount"`
	MaxAmount      float64     `yaml:"max_amount"`
	Installments   bool        `yaml:"installments"`
	Adapter        AdapterKind `yaml:"adapter"`
	BaseURL        string      `yaml:"base_url"`
	TimeoutMs      int         `yaml:"timeout_ms"`
	WebhookSecret  string      `yaml:"webhook_secret"`
	CommissionRate float64     `yaml:"commission_rate"`
	Simulation     Simulation  `yaml:"simulation"`
}

// Validate checks if the entry is usable
func (e *Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if e.Preference < 0 {
		return fmt.Errorf("preference cannot be negative for gateway %s", e.ID)
	}
	if e.MinAmount < 0 {
		return fmt.Errorf("min_amount cannot be negative for gateway %s", e.ID)
	}
	if e.MaxAmount != 0 && e.MaxAmount < e.MinAmount {
		return fmt.Errorf("max_amount must be greater than min_amount for gateway %s", e.ID)
	}
	if e.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms cannot be negative for gateway %s", e.ID)
	}
	if e.CommissionRate < 0 || e.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0, 1) for gateway %s", e.ID)
	}

	switch e.Adapter {
	case HTTPAdapter:
		if _, err := url.ParseRequestURI(e.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url for gateway %s: %w", e.ID, err)
		}
	case SimulatedAdapter:
		if e.Simulation.SuccessRate < 0 || e.Simulation.SuccessRate > 1 {
			return fmt.Errorf("simulation.success_rate must be in [0, 1] for gateway %s", e.ID)
		}
		if e.Simulation.LatencyMs < 0 || e.Simulation.JitterMs < 0 {
			return fmt.Errorf("simulation latency cannot be negative for gateway %s", e.ID)
		}
	default:
		return fmt.Errorf("unknown adapter %q for gateway %s", e.Adapter, e.ID)
	}

	if e.WebhookSecret != "" {
		if _, err := signature.ParseSecret(e.WebhookSecret); err != nil {
			return fmt.Errorf("invalid webhook_secret for gateway %s: %w", e.ID, err)
		}
	}
	return nil
}

// Profile returns the capability profile used for candidate filtering
func (e *Entry) Profile() gateway.CapabilityProfile {
	return gateway.CapabilityProfile{
		MinAmount:    e.MinAmount,
		MaxAmount:    e.MaxAmount,
		Installments: e.Installments,
	}
}

// Secret returns the parsed webhook secret, if any
func (e *Entry) Secret() (signature.Secret, bool) {
	if e.WebhookSecret == "" {
		return signature.Secret{}, false
	}
	s, err := signature.ParseSecret(e.WebhookSecret)
	if err != nil {
		return signature.Secret{}, false
	}
	return s, true
}

/* NewAdapter builds the adapter declared by the entry
 * forceSimulated replaces http adapters by simulated ones, for sandbox runs
 */
func (e *Entry) NewAdapter(forceSimulated bool) (gateway.Adapter, error) {
	if e.Adapter == SimulatedAdapter || forceSimulated {
		rate := e.Simulation.SuccessRate
		if e.Adapter != SimulatedAdapter && rate == 0 {
			rate = 1
		}
		return adapters.NewSimulated(adapters.SimulatedConfig{
			Gateway:        e.ID,
			SuccessRate:    rate,
			Latency:        time.Duration(e.Simulation.LatencyMs) * time.Millisecond,
			Jitter:         time.Duration(e.Simulation.JitterMs) * time.Millisecond,
			CommissionRate: e.CommissionRate,
		}), nil
	}
	return adapters.NewHTTP(adapters.HTTPConfig{
		Gateway:        e.ID,
		BaseURL:        e.BaseURL,
		Timeout:        time.Duration(e.TimeoutMs) * time.Millisecond,
		CommissionRate: e.CommissionRate,
	})
}
