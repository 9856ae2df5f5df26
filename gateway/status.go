package gateway

import (
	"encoding/json"
	"fmt"
)

/* Status represents the state of a payment at its gateway
 * Follows the lifecycle: Pending -> Authorized -> Approved -> Refunded,
 * with Rejected and Cancelled as alternative endings
 */
type Status int

const (
	Pending Status = iota + 1
	Authorized
	Approved
	Rejected
	Cancelled
	Refunded
)

// String returns the wire name of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Authorized:
		return "AUTHORIZED"
	case Approved:
		return "APPROVED"
	case Rejected:
		return "REJECTED"
	case Cancelled:
		return "CANCELLED"
	case Refunded:
		return "REFUNDED"
	default:
		return "UNKNOWN"
	}
}

// NewStatus creates a Status from its wire name
func NewStatus(str string) Status {
	switch str {
	case "PENDING", "pending":
		return Pending
	case "AUTHORIZED", "authorized":
		return Authorized
	case "APPROVED", "approved":
		return Approved
	case "REJECTED", "rejected":
		return Rejected
	case "CANCELLED", "cancelled":
		return Cancelled
	case "REFUNDED", "refunded":
		return Refunded
	default:
		return Pending
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Refunded {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Rejected || s == Cancelled || s == Refunded
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("unmarshaling status: %w", err)
	}
	*s = NewStatus(str)
	return nil
}
