package gateway

import "time"

// Metrics holds the cumulative counters of a gateway and its smoothed latency
type Metrics struct {
	Gateway               ID        `json:"gateway"`
	TotalRequests         int64     `json:"total_requests"`
	SuccessfulRequests    int64     `json:"successful_requests"`
	FailedRequests        int64     `json:"failed_requests"`
	AverageResponseTimeMs float64   `json:"average_response_time_ms"`
	LastRequestTime       time.Time `json:"last_request_time"`
}

// SuccessRate returns successful/total as a percentage, 100 with no traffic
func (m Metrics) SuccessRate() float64 {
	if m.TotalRequests == 0 {
		return 100
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100
}

// record updates the counters and the exponential moving average.
// The first sample seeds the average.
func (m *Metrics) record(success bool, responseTimeMs float64, at time.Time, alpha float64) {
	m.TotalRequests++
	if success {
		m.SuccessfulRequests++
	} else {
		m.FailedRequests++
	}
	if m.TotalRequests == 1 {
		m.AverageResponseTimeMs = responseTimeMs
	} else {
		m.AverageResponseTimeMs = Smooth(m.AverageResponseTimeMs, responseTimeMs, alpha)
	}
	m.LastRequestTime = at
}

// Smooth returns alpha*sample + (1-alpha)*previous
func Smooth(previous, sample, alpha float64) float64 {
	return alpha*sample + (1-alpha)*previous
}
