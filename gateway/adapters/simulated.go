package adapters

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

// SimulatedConfig configures an in-process gateway
type SimulatedConfig struct {
	Gateway gateway.ID
	// SuccessRate is the probability in [0,1] that a payment is accepted
	SuccessRate    float64
	Latency        time.Duration
	Jitter         time.Duration
	CommissionRate float64
	Seed           int64
}

type simPayment struct {
	result   gateway.Result
	amount   float64
	refunded float64
	metadata map[string]string
}

/* Simulated is a gateway living inside the process
 * Used for local runs and load simulations, it keeps created payments in memory
 */
type Simulated struct {
	cfg SimulatedConfig

	mu       sync.Mutex
	rng      *rand.Rand
	payments map[string]*simPayment
	seq      int
	down     bool
}

// NewSimulated creates a simulated gateway
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.SuccessRate < 0 {
		cfg.SuccessRate = 0
	}
	if cfg.SuccessRate > 1 {
		cfg.SuccessRate = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		payments: make(map[string]*simPayment),
	}
}

// SetDown forces every call to fail until cleared
func (s *Simulated) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// SetSuccessRate changes the acceptance probability
func (s *Simulated) SetSuccessRate(rate float64) {
	s.mu.Lock()
	s.cfg.SuccessRate = rate
	s.mu.Unlock()
}

func (s *Simulated) CreatePayment(ctx context.Context, req gateway.Request) (gateway.Result, error) {
	if err := s.wait(ctx); err != nil {
		return gateway.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return gateway.Result{}, s.gatewayError("PROVIDER_DOWN", "gateway unavailable")
	}
	if s.rng.Float64() >= s.cfg.SuccessRate {
		return gateway.Result{}, s.gatewayError("PROVIDER_ERROR", "payment declined by provider")
	}

	s.seq++
	res := gateway.Result{
		ID:                fmt.Sprintf("%s-%06d", s.cfg.Gateway, s.seq),
		Gateway:           s.cfg.Gateway,
		Status:            gateway.Approved,
		ExternalReference: req.BookingID,
		Raw:               map[string]any{"simulated": true},
		CreatedAt:         time.Now(),
	}
	md := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		md[k] = v
	}
	s.payments[res.ID] = &simPayment{result: res, amount: req.Amount, metadata: md}
	return res, nil
}

func (s *Simulated) GetPayment(ctx context.Context, externalID string) (gateway.Result, error) {
	if err := s.wait(ctx); err != nil {
		return gateway.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return gateway.Result{}, s.gatewayError("PROVIDER_DOWN", "gateway unavailable")
	}
	p, ok := s.payments[externalID]
	if !ok {
		return gateway.Result{}, &gateway.ValidationError{Message: "unknown payment", Details: map[string]any{"external_id": externalID}}
	}
	return p.result, nil
}

func (s *Simulated) ProcessRefund(ctx context.Context, externalID string, amount *float64, reason string) (gateway.Result, error) {
	if err := s.wait(ctx); err != nil {
		return gateway.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return gateway.Result{}, s.gatewayError("PROVIDER_DOWN", "gateway unavailable")
	}
	p, ok := s.payments[externalID]
	if !ok {
		return gateway.Result{}, &gateway.ValidationError{Message: "unknown payment", Details: map[string]any{"external_id": externalID}}
	}

	remaining := p.amount - p.refunded
	value := remaining
	if amount != nil {
		value = *amount
	}
	if value <= 0 || value > remaining {
		return gateway.Result{}, &gateway.ValidationError{
			Message: "refund exceeds remaining amount",
			Details: map[string]any{"remaining": remaining, "requested": value},
		}
	}

	p.refunded += value
	p.result.Status = gateway.Refunded
	p.result.Raw = map[string]any{"simulated": true, "refunded": p.refunded, "reason": reason}
	return p.result, nil
}

/* ProcessWebhook resolves notifications of the form {"external_id": <gateway id>, "status": ...}
 * The returned PaymentID is the local id carried in the payment metadata
 */
func (s *Simulated) ProcessWebhook(ctx context.Context, payload map[string]any) (gateway.WebhookResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.down {
		return gateway.WebhookResult{}, s.gatewayError("PROVIDER_DOWN", "gateway unavailable")
	}

	ext := stringField(payload, "external_id")
	if ext == "" {
		ext = nestedID(payload)
	}
	p, ok := s.payments[ext]
	if !ok {
		return gateway.WebhookResult{Success: false, ProcessedAt: now, Error: "unknown payment"}, nil
	}

	status := p.result.Status
	if raw := stringField(payload, "status"); raw != "" {
		status = normalizeStatus(raw)
		p.result.Status = status
	}
	return gateway.WebhookResult{
		Success:     true,
		PaymentID:   p.metadata[gateway.MetadataPaymentID],
		Status:      status,
		Amount:      p.amount,
		ProcessedAt: now,
	}, nil
}

func (s *Simulated) CalculateCommission(ctx context.Context, amount float64, providerID string) (gateway.Commission, error) {
	return gateway.NewCommission(amount, s.cfg.CommissionRate), nil
}

func (s *Simulated) Ping(ctx context.Context) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return s.gatewayError("PROVIDER_DOWN", "gateway unavailable")
	}
	return nil
}

// wait sleeps for the configured latency, honoring cancellation
func (s *Simulated) wait(ctx context.Context) error {
	d := s.cfg.Latency
	if s.cfg.Jitter > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int63n(int64(s.cfg.Jitter)))
		s.mu.Unlock()
	}
	if d <= 0 {
		if ctx.Err() != nil {
			return s.cancelled(ctx)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return s.cancelled(ctx)
	case <-timer.C:
		return nil
	}
}

func (s *Simulated) cancelled(ctx context.Context) error {
	code := "CANCELLED"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = "TIMEOUT"
	}
	return &gateway.GatewayError{Gateway: s.cfg.Gateway, Code: code, Err: ctx.Err()}
}

func (s *Simulated) gatewayError(code, msg string) error {
	return &gateway.GatewayError{Gateway: s.cfg.Gateway, Code: code, Message: msg}
}
