package monitoring

import (
	"encoding/json"
	"fmt"
)

// Classification is the derived health of the system or of one gateway
type Classification int

const (
	Healthy Classification = iota + 1
	Degraded
	Unhealthy
)

func (c Classification) String() string {
	switch c {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Classification) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "healthy":
		*c = Healthy
	case "degraded":
		*c = Degraded
	case "unhealthy":
		*c = Unhealthy
	default:
		return fmt.Errorf("invalid classification: %s", str)
	}
	return nil
}

/* Thresholds holds the targets classifications are measured against
 * SuccessRate is a fraction in (0,1], ResponseTimeMs is in milliseconds
 */
type Thresholds struct {
	SuccessRate    float64
	ResponseTimeMs float64
}

// ClassifyOverall applies the system rule, worst case wins.
// successRate and errorRate are percentages.
func ClassifyOverall(th Thresholds, successRate, responseTimeMs, errorRate float64) Classification {
	target := th.SuccessRate * 100
	if successRate < target*0.8 || responseTimeMs > th.ResponseTimeMs*2 || errorRate > 20 {
		return Unhealthy
	}
	if successRate < target || responseTimeMs > th.ResponseTimeMs || errorRate > 10 {
		return Degraded
	}
	return Healthy
}

// ClassifyGateway uses looser multipliers, single gateways are noisier
func ClassifyGateway(th Thresholds, successRate, responseTimeMs float64) Classification {
	target := th.SuccessRate * 100
	if successRate < target*0.7 || responseTimeMs > th.ResponseTimeMs*3 {
		return Unhealthy
	}
	if successRate < target*0.9 || responseTimeMs > th.ResponseTimeMs*1.5 {
		return Degraded
	}
	return Healthy
}
