package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError is a caller fault. It is never retried on another gateway.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

// GatewayError is a remote, network or timeout fault. It triggers failover.
type GatewayError struct {
	Gateway ID
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway %s: %s (%s)", e.Gateway, msg, e.Code)
	}
	return fmt.Sprintf("gateway %s: %s", e.Gateway, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned for unknown payment ids
type NotFoundError struct {
	PaymentID string
}

func (e *NotFoundError) Error() string {
	return "payment not found: " + e.PaymentID
}

// Attempt records a single try against one gateway
type Attempt struct {
	Gateway  ID
	Err      error
	Duration time.Duration
}

/* AggregateFailureError is returned when every candidate was tried and failed
 * Attempts keeps the ranked order, each gateway appearing once
 */
type AggregateFailureError struct {
	Attempts []Attempt
	LastErr  error
}

func (e *AggregateFailureError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("no gateway attempted: %v", e.LastErr)
	}
	ids := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		ids[i] = a.Gateway.String()
	}
	return fmt.Sprintf("all gateways failed [%s]: %v", strings.Join(ids, ", "), e.LastErr)
}

func (e *AggregateFailureError) Unwrap() error {
	return e.LastErr
}

// Attempted lists the tried gateways in order
func (e *AggregateFailureError) Attempted() []ID {
	ids := make([]ID, len(e.Attempts))
	for i, a := range e.Attempts {
		ids[i] = a.Gateway
	}
	return ids
}

// ErrNoHealthyGateway is the cause reported when every capable gateway is unhealthy
var ErrNoHealthyGateway = errors.New("no healthy gateway available")

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err carries a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ErrorCode extracts a short code suitable for error breakdowns
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var ge *GatewayError
	if errors.As(err, &ge) && ge.Code != "" {
		return ge.Code
	}
	if IsValidation(err) {
		return "VALIDATION_ERROR"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	return "UNKNOWN"
}
