package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

/* Status represents the current state of a notification delivery
 * Follows the lifecycle: Pending -> Delivering -> Delivered/Failed/Retrying
 */
type Status int

const (
	Pending Status = iota + 1
	Delivering
	Delivered
	Failed
	Retrying
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Delivering:
		return "delivering"
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	case Retrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Retrying {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Delivered || s == Failed
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

/* Notification is one outbound message to the alert receiver
 * Payload holds the exact envelope bytes that get signed
 */
type Notification struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Payload    []byte    `json:"-"`
	Status     Status    `json:"status"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
	LastError  string    `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
