package gateway

import "time"

/* Health is a point-in-time view of a gateway's health
 * SuccessRate is a percentage derived from the metrics counters when read
 */
type Health struct {
	Gateway             ID        `json:"gateway"`
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastResponseTimeMs  float64   `json:"last_response_time_ms"`
	SuccessRate         float64   `json:"success_rate"`
	LastChecked         time.Time `json:"last_checked"`
}

type healthState struct {
	healthy             bool
	consecutiveFailures int
	lastResponseTimeMs  float64
	lastChecked         time.Time
}

func newHealthState() healthState {
	return healthState{healthy: true}
}

// record applies one outcome. A gateway is marked unhealthy once the failure
// streak reaches threshold and healthy again on the first success.
func (h *healthState) record(success bool, responseTimeMs float64, at time.Time, threshold int) {
	h.lastResponseTimeMs = responseTimeMs
	h.lastChecked = at
	if success {
		h.consecutiveFailures = 0
		h.healthy = true
		return
	}
	h.consecutiveFailures++
	if h.consecutiveFailures >= threshold {
		h.healthy = false
	}
}
