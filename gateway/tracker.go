package gateway

import (
	"sync"
	"time"
)

const (
	DefaultFailoverThreshold = 3
	DefaultSmoothingAlpha    = 0.2
)

// TrackerOptions tunes the health state machine and the latency average
type TrackerOptions struct {
	FailoverThreshold int
	SmoothingAlpha    float64
}

func (o TrackerOptions) withDefaults() TrackerOptions {
	if o.FailoverThreshold < 1 {
		o.FailoverThreshold = DefaultFailoverThreshold
	}
	if o.SmoothingAlpha <= 0 || o.SmoothingAlpha > 1 {
		o.SmoothingAlpha = DefaultSmoothingAlpha
	}
	return o
}

type gatewayState struct {
	mu      sync.Mutex
	health  healthState
	metrics Metrics
}

/* Tracker owns the health and metrics of every registered gateway
 * The gateway set is fixed at construction, each gateway has its own lock
 * so health and metrics of one gateway always change together
 */
type Tracker struct {
	order  []ID
	states map[ID]*gatewayState
	opts   TrackerOptions
	now    func() time.Time
}

// NewTracker creates a tracker for the given gateways, all starting healthy
func NewTracker(ids []ID, opts TrackerOptions) *Tracker {
	t := &Tracker{
		order:  make([]ID, 0, len(ids)),
		states: make(map[ID]*gatewayState, len(ids)),
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
	for _, id := range ids {
		if _, dup := t.states[id]; dup {
			continue
		}
		t.order = append(t.order, id)
		t.states[id] = &gatewayState{
			health:  newHealthState(),
			metrics: Metrics{Gateway: id},
		}
	}
	return t
}

// RecordOutcome is the single entry point for every attempt and probe.
// Unknown gateways are ignored and reported with false.
func (t *Tracker) RecordOutcome(id ID, success bool, responseTime time.Duration) bool {
	s, ok := t.states[id]
	if !ok {
		return false
	}
	ms := float64(responseTime) / float64(time.Millisecond)
	at := t.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.record(success, ms, at, t.opts.SmoothingAlpha)
	s.health.record(success, ms, at, t.opts.FailoverThreshold)
	return true
}

// IsHealthy reports the current health flag, false for unknown gateways
func (t *Tracker) IsHealthy(id ID) bool {
	s, ok := t.states[id]
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health.healthy
}

// Health returns a copy of one gateway's health
func (t *Tracker) Health(id ID) (Health, bool) {
	s, ok := t.states[id]
	if !ok {
		return Health{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthView(id), true
}

// Metrics returns a copy of one gateway's metrics
func (t *Tracker) Metrics(id ID) (Metrics, bool) {
	s, ok := t.states[id]
	if !ok {
		return Metrics{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics, true
}

// HealthSnapshot returns every gateway's health in registration order
func (t *Tracker) HealthSnapshot() []Health {
	out := make([]Health, 0, len(t.order))
	for _, id := range t.order {
		h, _ := t.Health(id)
		out = append(out, h)
	}
	return out
}

// MetricsSnapshot returns every gateway's metrics in registration order
func (t *Tracker) MetricsSnapshot() []Metrics {
	out := make([]Metrics, 0, len(t.order))
	for _, id := range t.order {
		m, _ := t.Metrics(id)
		out = append(out, m)
	}
	return out
}

func (s *gatewayState) healthView(id ID) Health {
	return Health{
		Gateway:             id,
		Healthy:             s.health.healthy,
		ConsecutiveFailures: s.health.consecutiveFailures,
		LastResponseTimeMs:  s.health.lastResponseTimeMs,
		SuccessRate:         s.metrics.SuccessRate(),
		LastChecked:         s.health.lastChecked,
	}
}

// rankKey reads the ranking inputs of a gateway under a single lock
func (t *Tracker) rankKey(id ID) rankKey {
	s := t.states[id]
	s.mu.Lock()
	defer s.mu.Unlock()
	return rankKey{
		healthy:     s.health.healthy,
		successRate: s.metrics.SuccessRate(),
		avgResponse: s.metrics.AverageResponseTimeMs,
		samples:     s.metrics.TotalRequests,
	}
}
