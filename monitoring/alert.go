package monitoring

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

// AlertType is the rule family that raised an alert
type AlertType int

const (
	Performance AlertType = iota + 1
	ErrorRate
	Volume
	Security
)

// String returns the string representation of the alert type
func (t AlertType) String() string {
	switch t {
	case Performance:
		return "performance"
	case ErrorRate:
		return "error_rate"
	case Volume:
		return "volume"
	case Security:
		return "security"
	default:
		return "unknown"
	}
}

// NewAlertType creates an AlertType from a string, zero when unknown
func NewAlertType(str string) AlertType {
	switch str {
	case "performance":
		return Performance
	case "error_rate":
		return ErrorRate
	case "volume":
		return Volume
	case "security":
		return Security
	default:
		return 0
	}
}

func (t AlertType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *AlertType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if *t = NewAlertType(str); *t == 0 {
		return fmt.Errorf("invalid alert type: %s", str)
	}
	return nil
}

// Severity orders alerts by urgency, Critical being the highest
type Severity int

const (
	Low Severity = iota + 1
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// NewSeverity creates a Severity from a string, zero when unknown
func NewSeverity(str string) Severity {
	switch str {
	case "low":
		return Low
	case "medium":
		return Medium
	case "high":
		return High
	case "critical":
		return Critical
	default:
		return 0
	}
}

// Validate checks if the severity is valid
func (s Severity) Validate() error {
	if s < Low || s > Critical {
		return fmt.Errorf("invalid severity: %d", s)
	}
	return nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if *s = NewSeverity(str); *s == 0 {
		return fmt.Errorf("invalid severity: %s", str)
	}
	return nil
}

/* Alert is a threshold breach raised by the engine
 * It only moves from unresolved to resolved. A fresh breach is a new Alert.
 */
type Alert struct {
	ID         string         `json:"id"`
	Type       AlertType      `json:"type"`
	Severity   Severity       `json:"severity"`
	Gateway    gateway.ID     `json:"gateway,omitempty"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Resolved   bool           `json:"resolved"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
}
