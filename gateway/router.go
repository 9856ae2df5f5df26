package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Router represents the orchestration layer in front of the gateways
 * Uses pointer semantics as it's an API, not data
 */

// MetadataPaymentID is the metadata key carrying the stored payment id to adapters
const MetadataPaymentID = "payment_id"

// UseCase defines the payment operations exposed to callers
type UseCase interface {
	CreatePayment(ctx context.Context, req Request) (Result, error)
	GetPayment(ctx context.Context, id string) (Result, error)
	ProcessRefund(ctx context.Context, id string, amount *float64, reason string) (Result, error)
	ProcessWebhook(ctx context.Context, payload map[string]any, hint ID) (WebhookResult, error)
	CalculateCommission(ctx context.Context, gateway ID, amount float64, providerID string) (Commission, error)
	GatewayHealth() []Health
	GatewayMetrics() []Metrics
	Summary() Summary
}

// Registration binds a gateway id to its adapter and capability profile
type Registration struct {
	ID         ID
	Adapter    Adapter
	Profile    CapabilityProfile
	Preference int
}

// RouterConfig groups the Router collaborators
type RouterConfig struct {
	Gateways []Registration
	Repo     Repository
	Sink     OutcomeSink
	Detector *WebhookDetector
	Tracker  TrackerOptions
	// StrictHealthy forbids attempting unhealthy gateways even when they are the only capable ones
	StrictHealthy  bool
	AttemptTimeout time.Duration
	Publisher      HealthPublisher
	Logger         zerolog.Logger
}

type Router struct {
	gateways       map[ID]Registration
	order          []ID
	preference     map[ID]int
	tracker        *Tracker
	repo           Repository
	sink           OutcomeSink
	detector       *WebhookDetector
	strict         bool
	attemptTimeout time.Duration
	publisher      HealthPublisher
	logger         zerolog.Logger
	now            func() time.Time
	newID          func() string
}

// NewRouter creates a router over a fixed set of gateways
func NewRouter(cfg RouterConfig) (*Router, error) {
	if len(cfg.Gateways) == 0 {
		return nil, fmt.Errorf("at least one gateway is required")
	}
	if cfg.Repo == nil {
		return nil, fmt.Errorf("payment repository is required")
	}

	r := &Router{
		gateways:       make(map[ID]Registration, len(cfg.Gateways)),
		preference:     make(map[ID]int, len(cfg.Gateways)),
		repo:           cfg.Repo,
		sink:           cfg.Sink,
		detector:       cfg.Detector,
		strict:         cfg.StrictHealthy,
		attemptTimeout: cfg.AttemptTimeout,
		publisher:      cfg.Publisher,
		logger:         cfg.Logger,
		now:            time.Now,
		newID:          func() string { return uuid.New().String() },
	}
	if r.sink == nil {
		r.sink = nopSink{}
	}
	if r.detector == nil {
		r.detector = NewWebhookDetector("")
	}

	for i, reg := range cfg.Gateways {
		if reg.ID == "" {
			return nil, fmt.Errorf("gateway at position %d has no id", i)
		}
		if reg.Adapter == nil {
			return nil, fmt.Errorf("gateway %s has no adapter", reg.ID)
		}
		if _, dup := r.gateways[reg.ID]; dup {
			return nil, fmt.Errorf("gateway %s registered twice", reg.ID)
		}
		r.gateways[reg.ID] = reg
		r.preference[reg.ID] = preferenceOf(reg.Preference, reg.ID, i)
		r.order = append(r.order, reg.ID)
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.preference[r.order[i]] < r.preference[r.order[j]]
	})
	r.tracker = NewTracker(r.order, cfg.Tracker)

	return r, nil
}

// Tracker exposes the health and metrics state
func (r *Router) Tracker() *Tracker {
	return r.tracker
}

/* Candidates returns the gateways that may serve req, best first
 * Capability filtering never falls back: with no capable gateway the request
 * is rejected as a validation error
 */
func (r *Router) Candidates(req Request) ([]ID, error) {
	var capable []candidate
	for _, id := range r.order {
		if r.gateways[id].Profile.Accepts(req) {
			capable = append(capable, candidate{id: id, preference: r.preference[id], key: r.tracker.rankKey(id)})
		}
	}
	if len(capable) == 0 {
		return nil, &ValidationError{
			Message: "no gateway accepts this payment",
			Details: map[string]any{"amount": req.Amount, "installments": req.Installments},
		}
	}

	healthy := make([]candidate, 0, len(capable))
	for _, c := range capable {
		if c.key.healthy {
			healthy = append(healthy, c)
		}
	}
	if len(healthy) > 0 {
		return rank(healthy, req.PreferredGateway), nil
	}
	if r.strict {
		return nil, &AggregateFailureError{LastErr: ErrNoHealthyGateway}
	}
	r.logger.Warn().Int("candidates", len(capable)).Msg("no healthy gateway, attempting unhealthy candidates")
	return rank(capable, req.PreferredGateway), nil
}

// CreatePayment routes a new payment through the ranked candidates
func (r *Router) CreatePayment(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	candidates, err := r.Candidates(req)
	if err != nil {
		return Result{}, err
	}

	now := r.now()
	p := Payment{
		ID:        r.newID(),
		Status:    Pending,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Metadata:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for k, v := range req.Metadata {
		p.Metadata[k] = v
	}
	if req.BookingID != "" {
		p.Metadata["booking_id"] = req.BookingID
	}
	if err := r.repo.Create(ctx, p); err != nil {
		return Result{}, fmt.Errorf("storing payment: %w", err)
	}

	// adapters see the stored id so notifications can be correlated
	req.Metadata = make(map[string]string, len(p.Metadata)+1)
	for k, v := range p.Metadata {
		req.Metadata[k] = v
	}
	req.Metadata[MetadataPaymentID] = p.ID

	amount := req.Amount
	attempts := make([]Attempt, 0, len(candidates))
	var lastErr error
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		adapter := r.gateways[id].Adapter
		res, took, err := r.attempt(ctx, id, func(ctx context.Context) (Result, error) {
			return adapter.CreatePayment(ctx, req)
		})
		if err == nil {
			r.record(id, ActionCreated, true, took, &amount, nil)
			return r.completePayment(ctx, p, id, res)
		}

		r.record(id, ActionFailed, false, took, &amount, err)
		attempts = append(attempts, Attempt{Gateway: id, Err: err, Duration: took})
		if IsValidation(err) {
			r.logger.Info().Str("gateway", id.String()).Err(err).Msg("payment rejected by gateway validation")
			r.markRejected(ctx, p)
			return Result{}, err
		}
		lastErr = err
		r.logger.Warn().Str("gateway", id.String()).Str("payment_id", p.ID).Err(err).Msg("gateway attempt failed, failing over")
	}

	r.markRejected(ctx, p)
	aggErr := &AggregateFailureError{Attempts: attempts, LastErr: lastErr}
	r.logger.Error().Str("payment_id", p.ID).Err(aggErr).Msg("all gateways failed")
	return Result{}, aggErr
}

func (r *Router) completePayment(ctx context.Context, p Payment, id ID, res Result) (Result, error) {
	status := res.Status
	if status.Validate() != nil {
		status = Pending
	}
	p.Gateway = id
	p.ExternalID = res.ID
	p.Status = status
	p.UpdatedAt = r.now()
	// persisted even when the caller is gone, the gateway holds the payment
	if err := r.repo.Update(context.WithoutCancel(ctx), p); err != nil {
		return Result{}, fmt.Errorf("updating payment %s: %w", p.ID, err)
	}
	r.logger.Debug().Str("gateway", id.String()).Str("payment_id", p.ID).Msg("payment created")

	res.ExternalReference = res.ID
	res.ID = p.ID
	res.Gateway = id
	res.Status = status
	if res.CreatedAt.IsZero() {
		res.CreatedAt = p.CreatedAt
	}
	return res, nil
}

func (r *Router) markRejected(ctx context.Context, p Payment) {
	p.Status = Rejected
	p.UpdatedAt = r.now()
	if err := r.repo.Update(context.WithoutCancel(ctx), p); err != nil {
		r.logger.Error().Str("payment_id", p.ID).Err(err).Msg("marking payment rejected")
	}
}

// GetPayment queries the gateway that served the payment, and only that one
func (r *Router) GetPayment(ctx context.Context, id string) (Result, error) {
	p, err := r.repo.Get(ctx, id)
	if err != nil {
		return Result{}, r.lookupError(id, err)
	}
	if p.Gateway == "" {
		return resultFromPayment(p), nil
	}
	reg, err := r.registered(p.Gateway)
	if err != nil {
		return Result{}, err
	}

	res, took, err := r.attempt(ctx, p.Gateway, func(ctx context.Context) (Result, error) {
		return reg.Adapter.GetPayment(ctx, p.ExternalID)
	})
	if err != nil {
		r.record(p.Gateway, ActionFailed, false, took, nil, err)
		return Result{}, err
	}
	r.record(p.Gateway, ActionProcessed, true, took, nil, nil)
	p = r.syncStatus(ctx, p, res.Status)
	return mergeResult(res, p), nil
}

// ProcessRefund refunds a payment on its original gateway, fully when amount is nil
func (r *Router) ProcessRefund(ctx context.Context, id string, amount *float64, reason string) (Result, error) {
	p, err := r.repo.Get(ctx, id)
	if err != nil {
		return Result{}, r.lookupError(id, err)
	}
	if p.Gateway == "" {
		return Result{}, &ValidationError{Message: "payment was never accepted by a gateway", Details: map[string]any{"payment_id": id}}
	}
	if p.Status == Refunded {
		return Result{}, &ValidationError{Message: "payment already refunded", Details: map[string]any{"payment_id": id}}
	}
	refundAmount := p.Amount
	if amount != nil {
		if *amount <= 0 || *amount > p.Amount {
			return Result{}, &ValidationError{
				Message: "refund amount must be greater than zero and not exceed the payment amount",
				Details: map[string]any{"amount": *amount, "payment_amount": p.Amount},
			}
		}
		refundAmount = *amount
	}
	reg, err := r.registered(p.Gateway)
	if err != nil {
		return Result{}, err
	}

	res, took, err := r.attempt(ctx, p.Gateway, func(ctx context.Context) (Result, error) {
		return reg.Adapter.ProcessRefund(ctx, p.ExternalID, amount, reason)
	})
	if err != nil {
		r.record(p.Gateway, ActionFailed, false, took, &refundAmount, err)
		return Result{}, err
	}
	r.record(p.Gateway, ActionProcessed, true, took, &refundAmount, nil)
	p = r.syncStatus(ctx, p, res.Status)
	return mergeResult(res, p), nil
}

// ProcessWebhook hands a notification to the gateway named by hint, or the detected one
func (r *Router) ProcessWebhook(ctx context.Context, payload map[string]any, hint ID) (WebhookResult, error) {
	if len(payload) == 0 {
		return WebhookResult{}, &ValidationError{Message: "webhook payload is empty"}
	}
	gw := hint
	if gw == "" {
		gw = r.detector.Detect(payload)
	}
	reg, ok := r.gateways[gw]
	if !ok {
		if hint != "" {
			return WebhookResult{}, &ValidationError{Message: "unknown gateway", Details: map[string]any{"gateway": hint}}
		}
		return WebhookResult{}, &GatewayError{Gateway: gw, Code: "GATEWAY_UNAVAILABLE", Message: "detected gateway is not registered"}
	}

	start := time.Now()
	res, err := r.callWebhook(ctx, gw, reg.Adapter, payload)
	took := time.Since(start)
	success := err == nil && res.Success
	r.record(gw, ActionWebhookReceived, success, took, nil, err)
	if err != nil {
		return WebhookResult{}, err
	}
	if res.ProcessedAt.IsZero() {
		res.ProcessedAt = r.now()
	}

	if res.PaymentID != "" && res.Status.Validate() == nil {
		r.applyWebhookStatus(ctx, gw, res)
	}
	return res, nil
}

func (r *Router) callWebhook(ctx context.Context, gw ID, adapter Adapter, payload map[string]any) (res WebhookResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &GatewayError{Gateway: gw, Code: "ADAPTER_PANIC", Message: fmt.Sprint(rec)}
		}
	}()
	res, err = adapter.ProcessWebhook(ctx, payload)
	return res, normalizeError(gw, err)
}

func (r *Router) applyWebhookStatus(ctx context.Context, gw ID, res WebhookResult) {
	p, err := r.repo.Get(ctx, res.PaymentID)
	if err != nil {
		if !IsNotFound(err) {
			r.logger.Warn().Str("payment_id", res.PaymentID).Err(err).Msg("loading payment for webhook")
		}
		return
	}
	if p.Gateway != gw {
		r.logger.Warn().Str("payment_id", p.ID).Str("gateway", gw.String()).Msg("webhook gateway does not match payment")
		return
	}
	r.syncStatus(ctx, p, res.Status)
}

// CalculateCommission delegates to the named gateway
func (r *Router) CalculateCommission(ctx context.Context, gateway ID, amount float64, providerID string) (Commission, error) {
	if amount <= 0 {
		return Commission{}, &ValidationError{Message: "amount must be greater than zero", Details: map[string]any{"amount": amount}}
	}
	reg, ok := r.gateways[gateway]
	if !ok {
		return Commission{}, &ValidationError{Message: "unknown gateway", Details: map[string]any{"gateway": gateway}}
	}
	c, err := reg.Adapter.CalculateCommission(ctx, amount, providerID)
	if err != nil {
		return Commission{}, normalizeError(gateway, err)
	}
	return c, nil
}

// GatewayHealth returns a snapshot of every gateway's health
func (r *Router) GatewayHealth() []Health {
	return r.tracker.HealthSnapshot()
}

// GatewayMetrics returns a snapshot of every gateway's metrics
func (r *Router) GatewayMetrics() []Metrics {
	return r.tracker.MetricsSnapshot()
}

// Summary aggregates the gateway snapshots
type Summary struct {
	TotalGateways         int     `json:"total_gateways"`
	HealthyGateways       int     `json:"healthy_gateways"`
	UnhealthyGateways     int     `json:"unhealthy_gateways"`
	TotalRequests         int64   `json:"total_requests"`
	SuccessRate           float64 `json:"success_rate"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
}

// Summary returns the overall gateway status
func (r *Router) Summary() Summary {
	s := Summary{TotalGateways: len(r.order)}
	var successful int64
	var latencySum float64
	var withTraffic int
	for _, id := range r.order {
		if r.tracker.IsHealthy(id) {
			s.HealthyGateways++
		}
		m, _ := r.tracker.Metrics(id)
		s.TotalRequests += m.TotalRequests
		successful += m.SuccessfulRequests
		if m.TotalRequests > 0 {
			latencySum += m.AverageResponseTimeMs
			withTraffic++
		}
	}
	s.UnhealthyGateways = s.TotalGateways - s.HealthyGateways
	s.SuccessRate = 100
	if s.TotalRequests > 0 {
		s.SuccessRate = float64(successful) / float64(s.TotalRequests) * 100
	}
	if withTraffic > 0 {
		s.AverageResponseTimeMs = latencySum / float64(withTraffic)
	}
	return s
}

/* attempt runs one adapter call with the optional per-attempt deadline
 * A result returned after the caller cancelled is kept, the gateway already acted on it.
 * Only an expired attempt deadline turns a late success into a timeout.
 */
func (r *Router) attempt(ctx context.Context, id ID, call func(ctx context.Context) (Result, error)) (res Result, took time.Duration, err error) {
	actx := ctx
	if r.attemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		took = time.Since(start)
		if rec := recover(); rec != nil {
			res = Result{}
			err = &GatewayError{Gateway: id, Code: "ADAPTER_PANIC", Message: fmt.Sprint(rec)}
		}
	}()
	res, err = call(actx)
	if err == nil && ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		err = actx.Err()
	}
	return res, took, normalizeError(id, err)
}

func (r *Router) record(id ID, action Action, success bool, took time.Duration, amount *float64, err error) {
	r.tracker.RecordOutcome(id, success, took)
	r.sink.Ingest(OutcomeEvent{
		Timestamp:  r.now(),
		Gateway:    id,
		Action:     action,
		Success:    success,
		DurationMs: float64(took) / float64(time.Millisecond),
		Amount:     amount,
		ErrorCode:  ErrorCode(err),
	})
}

func (r *Router) registered(id ID) (Registration, error) {
	reg, ok := r.gateways[id]
	if !ok {
		return Registration{}, &GatewayError{Gateway: id, Code: "GATEWAY_UNAVAILABLE", Message: "gateway is not registered"}
	}
	return reg, nil
}

func (r *Router) lookupError(id string, err error) error {
	if IsNotFound(err) {
		return err
	}
	return fmt.Errorf("loading payment %s: %w", id, err)
}

func (r *Router) syncStatus(ctx context.Context, p Payment, status Status) Payment {
	if status.Validate() != nil || status == p.Status {
		return p
	}
	p.Status = status
	p.UpdatedAt = r.now()
	if err := r.repo.Update(ctx, p); err != nil {
		r.logger.Error().Str("payment_id", p.ID).Err(err).Msg("updating payment status")
	}
	return p
}

// normalizeError wraps anything that is not a caller fault into a GatewayError
func normalizeError(id ID, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		if ge.Gateway == "" {
			ge.Gateway = id
		}
		return err
	}
	return &GatewayError{Gateway: id, Code: ErrorCode(err), Err: err}
}

func resultFromPayment(p Payment) Result {
	return Result{
		ID:                p.ID,
		Gateway:           p.Gateway,
		Status:            p.Status,
		ExternalReference: p.ExternalID,
		CreatedAt:         p.CreatedAt,
	}
}

func mergeResult(res Result, p Payment) Result {
	out := resultFromPayment(p)
	out.Raw = res.Raw
	return out
}
