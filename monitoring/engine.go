package monitoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

/* Engine represents the monitoring layer fed by gateway outcome events
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the monitoring operations exposed to callers
type UseCase interface {
	GetHealthStatus() HealthStatus
	EvaluateHealth() HealthStatus
	GenerateReport(from, to time.Time) (Report, error)
	GetActiveAlerts() []Alert
	ResolveAlert(id string) (Alert, error)
	Events(from, to time.Time) []gateway.OutcomeEvent
}

// Options tunes the engine. Zero values take the defaults.
type Options struct {
	ResponseTimeThreshold time.Duration
	// SuccessRateThreshold is a fraction, 0.95 means 95%
	SuccessRateThreshold float64
	SmoothingAlpha       float64
	BufferSize           int
	AlertRetention       time.Duration
	EventMaxAge          time.Duration
	EvaluationInterval   time.Duration
	// Rules replaces the default reactive rules when set
	Rules  []Rule
	Now    func() time.Time
	Logger zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.ResponseTimeThreshold <= 0 {
		o.ResponseTimeThreshold = 5 * time.Second
	}
	if o.SuccessRateThreshold <= 0 || o.SuccessRateThreshold > 1 {
		o.SuccessRateThreshold = 0.95
	}
	if o.SmoothingAlpha <= 0 || o.SmoothingAlpha > 1 {
		o.SmoothingAlpha = 0.2
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.AlertRetention <= 0 {
		o.AlertRetention = 30 * 24 * time.Hour
	}
	if o.EventMaxAge <= 0 {
		o.EventMaxAge = 48 * time.Hour
	}
	if o.EvaluationInterval <= 0 {
		o.EvaluationInterval = time.Minute
	}
	if o.Rules == nil {
		o.Rules = DefaultRules()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// GatewayStatus is the last-hour view of one gateway
type GatewayStatus struct {
	Status          Classification `json:"status"`
	SuccessRate     float64        `json:"success_rate"`
	ResponseTimeMs  float64        `json:"response_time_ms"`
	Transactions    int            `json:"transactions"`
	LastTransaction time.Time      `json:"last_transaction"`
}

// HealthStatus is the system view computed over the last hour
type HealthStatus struct {
	Overall           Classification               `json:"overall"`
	SuccessRate       float64                      `json:"success_rate"`
	ResponseTimeMs    float64                      `json:"response_time_ms"`
	TotalTransactions int                          `json:"total_transactions"`
	ErrorRate         float64                      `json:"error_rate"`
	Gateways          map[gateway.ID]GatewayStatus `json:"gateways"`
	Alerts            []Alert                      `json:"alerts"`
	LastUpdated       time.Time                    `json:"last_updated"`
}

type Engine struct {
	opts       Options
	thresholds Thresholds
	logger     zerolog.Logger
	newID      func() string

	mu     sync.Mutex
	events *EventLog
	alerts *AlertStore

	hooksMu     sync.RWMutex
	alertHooks  []func(Alert)
	healthHooks []func(HealthStatus)

	evalMu      sync.Mutex
	lastOverall Classification
}

func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts: opts,
		thresholds: Thresholds{
			SuccessRate:    opts.SuccessRateThreshold,
			ResponseTimeMs: float64(opts.ResponseTimeThreshold) / float64(time.Millisecond),
		},
		logger: opts.Logger,
		newID:  func() string { return uuid.New().String() },
		events: NewEventLog(opts.BufferSize),
		alerts: NewAlertStore(),
	}
}

// Thresholds returns the targets the engine classifies against
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

/* Ingest records an outcome event and runs the reactive rules
 * It never fails: malformed events are logged and dropped
 */
func (e *Engine) Ingest(event gateway.OutcomeEvent) {
	if err := validateEvent(event); err != nil {
		e.logger.Warn().Err(err).Str("gateway", event.Gateway.String()).Msg("dropping outcome event")
		return
	}
	now := e.opts.Now()
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}

	e.mu.Lock()
	e.events.Append(event)
	w := e.window(now, event)
	e.mu.Unlock()

	if len(w.Recent) < MinSamples {
		return
	}
	for _, rule := range e.opts.Rules {
		alerts, err := rule.evaluate(w)
		if err != nil {
			e.raise(Alert{
				Type:     ErrorRate,
				Severity: High,
				Message:  "Payment monitoring rule failed",
				Details:  map[string]any{"rule": rule.Name, "error": err.Error()},
			})
			continue
		}
		for _, a := range alerts {
			e.raise(a)
		}
	}
}

func validateEvent(event gateway.OutcomeEvent) error {
	if event.Gateway == "" {
		return fmt.Errorf("event has no gateway")
	}
	if err := event.Action.Validate(); err != nil {
		return err
	}
	if event.DurationMs < 0 {
		return fmt.Errorf("negative duration: %f", event.DurationMs)
	}
	return nil
}

// window must be called with mu held
func (e *Engine) window(now time.Time, trigger gateway.OutcomeEvent) Window {
	w := Window{
		Now:        now,
		Trigger:    trigger,
		Thresholds: e.thresholds,
		Alpha:      e.opts.SmoothingAlpha,
	}
	recentFrom := now.Add(-RecentWindow)
	hourFrom := now.Add(-time.Hour)
	prevFrom := now.Add(-2 * time.Hour)
	for _, ev := range e.events.Since(prevFrom) {
		switch {
		case !ev.Timestamp.Before(hourFrom):
			w.LastHour = append(w.LastHour, ev)
			if !ev.Timestamp.Before(recentFrom) {
				w.Recent = append(w.Recent, ev)
			}
		default:
			w.PreviousHour = append(w.PreviousHour, ev)
		}
	}
	return w
}

// raise stores the alert and notifies the alert hooks
func (e *Engine) raise(a Alert) Alert {
	a.ID = e.newID()
	a.Timestamp = e.opts.Now()
	e.alerts.Add(a)

	e.logger.Warn().
		Str("alert_id", a.ID).
		Str("type", a.Type.String()).
		Str("severity", a.Severity.String()).
		Str("gateway", a.Gateway.String()).
		Msg(a.Message)

	e.hooksMu.RLock()
	hooks := append([]func(Alert){}, e.alertHooks...)
	e.hooksMu.RUnlock()
	for _, fn := range hooks {
		go e.safeCall("alert", func() { fn(a) })
	}
	return a
}

func (e *Engine) safeCall(kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error().Str("hook", kind).Interface("panic", rec).Msg("monitoring hook panicked")
		}
	}()
	fn()
}

// OnAlert registers fn to be called, asynchronously, for every new alert
func (e *Engine) OnAlert(fn func(Alert)) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.alertHooks = append(e.alertHooks, fn)
}

// OnHealthStatusChange registers fn to be called when the overall classification changes
func (e *Engine) OnHealthStatusChange(fn func(HealthStatus)) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.healthHooks = append(e.healthHooks, fn)
}

// GetHealthStatus computes the last-hour health of the system
func (e *Engine) GetHealthStatus() HealthStatus {
	now := e.opts.Now()

	e.mu.Lock()
	events := e.events.Since(now.Add(-time.Hour))
	latest, _ := e.events.Latest()
	e.mu.Unlock()

	agg := aggregate(events)
	status := HealthStatus{
		SuccessRate:       agg.successRate(),
		ResponseTimeMs:    agg.meanResponseTime(),
		TotalTransactions: agg.total,
		ErrorRate:         agg.errorRate(),
		Gateways:          make(map[gateway.ID]GatewayStatus),
		Alerts:            e.alerts.Active(),
		LastUpdated:       latest.Timestamp,
	}
	status.Overall = ClassifyOverall(e.thresholds, status.SuccessRate, status.ResponseTimeMs, status.ErrorRate)

	for id, g := range groupByGateway(events) {
		ga := aggregate(g)
		status.Gateways[id] = GatewayStatus{
			Status:          ClassifyGateway(e.thresholds, ga.successRate(), ga.meanResponseTime()),
			SuccessRate:     ga.successRate(),
			ResponseTimeMs:  ga.meanResponseTime(),
			Transactions:    ga.total,
			LastTransaction: ga.last,
		}
	}
	return status
}

/* EvaluateHealth is the periodic check
 * A degraded or unhealthy system raises an alert, a change of the overall
 * classification is pushed to the health hooks. A failing evaluation
 * becomes an alert instead of crashing the caller.
 */
func (e *Engine) EvaluateHealth() (status HealthStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			e.raise(Alert{
				Type:     ErrorRate,
				Severity: High,
				Message:  "Payment monitoring health check failed",
				Details:  map[string]any{"error": fmt.Sprint(rec)},
			})
		}
	}()

	status = e.GetHealthStatus()
	switch status.Overall {
	case Unhealthy:
		e.raise(Alert{
			Type:     Performance,
			Severity: Critical,
			Message:  "Payment system is unhealthy",
			Details:  healthDetails(status),
		})
	case Degraded:
		e.raise(Alert{
			Type:     Performance,
			Severity: Medium,
			Message:  "Payment system performance degraded",
			Details:  healthDetails(status),
		})
	}

	e.evalMu.Lock()
	changed := status.Overall != e.lastOverall
	e.lastOverall = status.Overall
	e.evalMu.Unlock()

	if changed {
		e.hooksMu.RLock()
		hooks := append([]func(HealthStatus){}, e.healthHooks...)
		e.hooksMu.RUnlock()
		for _, fn := range hooks {
			go e.safeCall("health", func() { fn(status) })
		}
	}
	return status
}

func healthDetails(s HealthStatus) map[string]any {
	return map[string]any{
		"successRate":       s.SuccessRate,
		"averageResponse":   s.ResponseTimeMs,
		"errorRate":         s.ErrorRate,
		"totalTransactions": s.TotalTransactions,
	}
}

// GetActiveAlerts returns unresolved alerts, oldest first
func (e *Engine) GetActiveAlerts() []Alert {
	return e.alerts.Active()
}

// ResolveAlert marks an alert resolved, resolving twice is a no-op
func (e *Engine) ResolveAlert(id string) (Alert, error) {
	a, changed, err := e.alerts.Resolve(id, e.opts.Now())
	if err != nil {
		return Alert{}, err
	}
	if changed {
		e.logger.Info().Str("alert_id", id).Msg("alert resolved")
	}
	return a, nil
}

// Events returns the retained events with from <= Timestamp < to
func (e *Engine) Events(from, to time.Time) []gateway.OutcomeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.Between(from, to)
}

// Maintain prunes resolved alerts past retention and events past their max age
func (e *Engine) Maintain() (prunedAlerts, trimmedEvents int) {
	now := e.opts.Now()
	prunedAlerts = e.alerts.Prune(now, e.opts.AlertRetention)

	e.mu.Lock()
	trimmedEvents = e.events.Trim(now.Add(-e.opts.EventMaxAge))
	e.mu.Unlock()

	if prunedAlerts > 0 || trimmedEvents > 0 {
		e.logger.Debug().Int("alerts", prunedAlerts).Int("events", trimmedEvents).Msg("monitoring maintenance")
	}
	return prunedAlerts, trimmedEvents
}

// Run evaluates health and maintains the stores every interval until ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.EvaluationInterval)
	defer ticker.Stop()

	e.logger.Info().Dur("interval", e.opts.EvaluationInterval).Msg("monitoring started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("monitoring stopped")
			return nil
		case <-ticker.C:
			e.EvaluateHealth()
			e.Maintain()
		}
	}
}

type aggregation struct {
	total      int
	successful int
	failed     int
	volume     float64
	latencySum float64
	latencyN   int
	last       time.Time
}

func aggregate(events []gateway.OutcomeEvent) aggregation {
	var a aggregation
	for _, e := range events {
		a.total++
		if e.Success {
			a.successful++
			if e.Amount != nil {
				a.volume += *e.Amount
			}
		} else {
			a.failed++
		}
		if e.DurationMs > 0 {
			a.latencySum += e.DurationMs
			a.latencyN++
		}
		if e.Timestamp.After(a.last) {
			a.last = e.Timestamp
		}
	}
	return a
}

// successRate is a percentage, 100 with no traffic
func (a aggregation) successRate() float64 {
	if a.total == 0 {
		return 100
	}
	return float64(a.successful) / float64(a.total) * 100
}

func (a aggregation) errorRate() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.failed) / float64(a.total) * 100
}

func (a aggregation) meanResponseTime() float64 {
	if a.latencyN == 0 {
		return 0
	}
	return a.latencySum / float64(a.latencyN)
}

func groupByGateway(events []gateway.OutcomeEvent) map[gateway.ID][]gateway.OutcomeEvent {
	out := make(map[gateway.ID][]gateway.OutcomeEvent)
	for _, e := range events {
		out[e.Gateway] = append(out[e.Gateway], e)
	}
	return out
}

func sortedGateways[T any](m map[gateway.ID]T) []gateway.ID {
	ids := make([]gateway.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
