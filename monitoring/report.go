package monitoring

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

// ErrInvalidPeriod is returned when a report period ends before it starts
var ErrInvalidPeriod = errors.New("report period ends before it starts")

const (
	unknownErrorCode = "UNKNOWN"

	gatewaySuccessFloor      = 90
	gatewayLatencyMultiplier = 1.6
	highVolume               = 10000
	performingWell           = "Payment system is performing well. Continue monitoring for any changes."
)

type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Overview struct {
	TotalTransactions      int     `json:"total_transactions"`
	SuccessfulTransactions int     `json:"successful_transactions"`
	FailedTransactions     int     `json:"failed_transactions"`
	TotalVolume            float64 `json:"total_volume"`
	AverageResponseTimeMs  float64 `json:"average_response_time_ms"`
	SuccessRate            float64 `json:"success_rate"`
}

// ErrorCount is how often a failure code appeared, Percentage is of all failures
type ErrorCount struct {
	Code       string  `json:"code"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type GatewayBreakdown struct {
	Transactions          int          `json:"transactions"`
	SuccessRate           float64      `json:"success_rate"`
	AverageResponseTimeMs float64      `json:"average_response_time_ms"`
	Volume                float64      `json:"volume"`
	Errors                []ErrorCount `json:"errors"`
}

type HourlyTrend struct {
	Hour         int     `json:"hour"`
	Transactions int     `json:"transactions"`
	SuccessRate  float64 `json:"success_rate"`
}

type DailyTrend struct {
	Date         string  `json:"date"`
	Transactions int     `json:"transactions"`
	SuccessRate  float64 `json:"success_rate"`
}

type Trends struct {
	Hourly []HourlyTrend `json:"hourly"`
	Daily  []DailyTrend  `json:"daily"`
}

// Report aggregates the events of a period
type Report struct {
	Period          Period                          `json:"period"`
	Overview        Overview                        `json:"overview"`
	Gateways        map[gateway.ID]GatewayBreakdown `json:"gateway_breakdown"`
	Trends          Trends                          `json:"trends"`
	Recommendations []string                        `json:"recommendations"`
}

/* GenerateReport aggregates the retained events with from <= Timestamp < to
 * Hours and dates are bucketed in UTC
 */
func (e *Engine) GenerateReport(from, to time.Time) (Report, error) {
	if to.Before(from) {
		return Report{}, fmt.Errorf("%w: %s > %s", ErrInvalidPeriod, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	events := e.Events(from, to)

	agg := aggregate(events)
	r := Report{
		Period: Period{From: from, To: to},
		Overview: Overview{
			TotalTransactions:      agg.total,
			SuccessfulTransactions: agg.successful,
			FailedTransactions:     agg.failed,
			TotalVolume:            agg.volume,
			AverageResponseTimeMs:  agg.meanResponseTime(),
			SuccessRate:            agg.successRate(),
		},
		Gateways: make(map[gateway.ID]GatewayBreakdown),
		Trends: Trends{
			Hourly: hourlyTrends(events),
			Daily:  dailyTrends(events),
		},
	}
	for id, g := range groupByGateway(events) {
		ga := aggregate(g)
		r.Gateways[id] = GatewayBreakdown{
			Transactions:          ga.total,
			SuccessRate:           ga.successRate(),
			AverageResponseTimeMs: ga.meanResponseTime(),
			Volume:                ga.volume,
			Errors:                errorCounts(g),
		}
	}
	r.Recommendations = e.recommendations(r)
	return r, nil
}

func errorCounts(events []gateway.OutcomeEvent) []ErrorCount {
	counts := make(map[string]int)
	failed := 0
	for _, e := range events {
		if e.Success {
			continue
		}
		failed++
		code := e.ErrorCode
		if code == "" {
			code = unknownErrorCode
		}
		counts[code]++
	}

	out := make([]ErrorCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, ErrorCount{Code: code, Count: n, Percentage: float64(n) / float64(failed) * 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// hourlyTrends always returns 24 buckets, empty ones report 100% success
func hourlyTrends(events []gateway.OutcomeEvent) []HourlyTrend {
	var buckets [24]aggregation
	for _, e := range events {
		h := e.Timestamp.UTC().Hour()
		buckets[h] = buckets[h].add(e)
	}
	out := make([]HourlyTrend, 24)
	for h, b := range buckets {
		out[h] = HourlyTrend{Hour: h, Transactions: b.total, SuccessRate: b.successRate()}
	}
	return out
}

func dailyTrends(events []gateway.OutcomeEvent) []DailyTrend {
	days := make(map[string]aggregation)
	for _, e := range events {
		d := e.Timestamp.UTC().Format(time.DateOnly)
		days[d] = days[d].add(e)
	}
	out := make([]DailyTrend, 0, len(days))
	for d, b := range days {
		out = append(out, DailyTrend{Date: d, Transactions: b.total, SuccessRate: b.successRate()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (a aggregation) add(e gateway.OutcomeEvent) aggregation {
	a.total++
	if e.Success {
		a.successful++
	} else {
		a.failed++
	}
	return a
}

func (e *Engine) recommendations(r Report) []string {
	var out []string
	target := e.thresholds.SuccessRate * 100
	threshold := e.thresholds.ResponseTimeMs

	if r.Overview.TotalTransactions > 0 && r.Overview.SuccessRate < target {
		out = append(out, fmt.Sprintf("Success rate is %.2f%%, below the %.0f%% target. Review the error patterns and payment validation.", r.Overview.SuccessRate, target))
	}
	if r.Overview.AverageResponseTimeMs > threshold {
		out = append(out, fmt.Sprintf("Average response time is %.0fms. Consider optimizing gateway integrations or adding caching.", r.Overview.AverageResponseTimeMs))
	}
	for _, id := range sortedGateways(r.Gateways) {
		g := r.Gateways[id]
		if g.SuccessRate < gatewaySuccessFloor {
			out = append(out, fmt.Sprintf("Gateway %s has a low success rate (%.2f%%). Check its configuration and contact the provider if needed.", id, g.SuccessRate))
		}
		if g.AverageResponseTimeMs > threshold*gatewayLatencyMultiplier {
			out = append(out, fmt.Sprintf("Gateway %s has high response times (%.0fms). Consider routing traffic to faster gateways.", id, g.AverageResponseTimeMs))
		}
	}
	if r.Overview.TotalTransactions > highVolume {
		out = append(out, "High transaction volume detected. Make sure gateway capacity and rate limits can absorb it.")
	}
	if len(out) == 0 {
		out = append(out, performingWell)
	}
	return out
}
