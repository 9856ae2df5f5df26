package gateway

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the kind of operation an outcome event describes
type Action int

const (
	ActionCreated Action = iota + 1
	ActionProcessed
	ActionFailed
	ActionWebhookReceived
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionProcessed:
		return "processed"
	case ActionFailed:
		return "failed"
	case ActionWebhookReceived:
		return "webhook_received"
	default:
		return "unknown"
	}
}

// NewAction creates an Action from a string, zero when unknown
func NewAction(str string) Action {
	switch str {
	case "created":
		return ActionCreated
	case "processed":
		return ActionProcessed
	case "failed":
		return ActionFailed
	case "webhook_received":
		return ActionWebhookReceived
	default:
		return 0
	}
}

// Validate checks if the action is valid
func (a Action) Validate() error {
	if a < ActionCreated || a > ActionWebhookReceived {
		return fmt.Errorf("invalid action: %d", a)
	}
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

/* OutcomeEvent is emitted for every attempt against a gateway
 * Immutable once built, the monitoring engine keeps it in its event log
 */
type OutcomeEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Gateway    ID        `json:"gateway"`
	Action     Action    `json:"action"`
	Success    bool      `json:"success"`
	DurationMs float64   `json:"duration_ms"`
	Amount     *float64  `json:"amount,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
}

// OutcomeSink receives outcome events. Implementations must not block.
type OutcomeSink interface {
	Ingest(event OutcomeEvent)
}

type nopSink struct{}

func (nopSink) Ingest(OutcomeEvent) {}
