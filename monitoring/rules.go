package monitoring

import (
	"fmt"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

const (
	// RecentWindow is the span the reactive rules look at
	RecentWindow = 5 * time.Minute
	// MinSamples is the number of recent events needed before any rule runs
	MinSamples = 10

	volumeFloor      = 100
	volumeMultiplier = 3
)

// Window is the slice of history a rule evaluates after an ingest
type Window struct {
	Now          time.Time
	Trigger      gateway.OutcomeEvent
	Recent       []gateway.OutcomeEvent
	LastHour     []gateway.OutcomeEvent
	PreviousHour []gateway.OutcomeEvent
	Thresholds   Thresholds
	Alpha        float64
}

/* Rule inspects a window and returns the alerts it wants raised
 * The engine fills ID and Timestamp, a returned error is turned into an
 * alert about the monitoring itself
 */
type Rule struct {
	Name     string
	Evaluate func(w Window) ([]Alert, error)
}

// DefaultRules returns the error rate, latency and volume rules
func DefaultRules() []Rule {
	return []Rule{
		{Name: "error_rate", Evaluate: errorRateRule},
		{Name: "response_time", Evaluate: responseTimeRule},
		{Name: "volume", Evaluate: volumeRule},
	}
}

func errorRateRule(w Window) ([]Alert, error) {
	failed := 0
	for _, e := range w.Recent {
		if !e.Success {
			failed++
		}
	}
	rate := float64(failed) / float64(len(w.Recent)) * 100

	var severity Severity
	switch {
	case rate > 50:
		severity = Critical
	case rate > 20:
		severity = High
	default:
		return nil, nil
	}
	return []Alert{{
		Type:     ErrorRate,
		Severity: severity,
		Gateway:  w.Trigger.Gateway,
		Message:  fmt.Sprintf("High error rate detected: %.2f%%", rate),
		Details: map[string]any{
			"errorRate":  rate,
			"gateway":    w.Trigger.Gateway.String(),
			"sampleSize": len(w.Recent),
		},
	}}, nil
}

func responseTimeRule(w Window) ([]Alert, error) {
	var (
		avg     float64
		samples int
	)
	for _, e := range w.Recent {
		if e.DurationMs <= 0 {
			continue
		}
		if samples == 0 {
			avg = e.DurationMs
		} else {
			avg = gateway.Smooth(avg, e.DurationMs, w.Alpha)
		}
		samples++
	}
	if samples == 0 {
		return nil, nil
	}

	threshold := w.Thresholds.ResponseTimeMs
	var severity Severity
	switch {
	case avg > threshold*2:
		severity = Critical
	case avg > threshold:
		severity = High
	default:
		return nil, nil
	}
	return []Alert{{
		Type:     Performance,
		Severity: severity,
		Gateway:  w.Trigger.Gateway,
		Message:  fmt.Sprintf("High response time detected: %.0fms", avg),
		Details: map[string]any{
			"averageResponseTime": avg,
			"threshold":           threshold,
		},
	}}, nil
}

func volumeRule(w Window) ([]Alert, error) {
	current, previous := len(w.LastHour), len(w.PreviousHour)
	if current <= previous*volumeMultiplier || current <= volumeFloor {
		return nil, nil
	}
	increase := "n/a"
	if previous > 0 {
		increase = fmt.Sprintf("%.2f%%", float64(current-previous)/float64(previous)*100)
	}
	return []Alert{{
		Type:     Volume,
		Severity: Medium,
		Message:  fmt.Sprintf("Unusual transaction volume spike detected: %d transactions in the last hour", current),
		Details: map[string]any{
			"currentHour":  current,
			"previousHour": previous,
			"increase":     increase,
		},
	}}, nil
}

// evaluate runs one rule, converting a panic into an error
func (r Rule) evaluate(w Window) (alerts []Alert, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			alerts = nil
			err = fmt.Errorf("rule panicked: %v", rec)
		}
	}()
	return r.Evaluate(w)
}
