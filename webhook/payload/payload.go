package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Event types published for monitoring notifications
const (
	TypeAlertRaised   = "payment.alert.raised"
	TypeHealthChanged = "payment.health.changed"
)

var typePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)

/* Envelope is the Standard Webhooks body: {type, timestamp, data}
 * Data stays raw so the signed bytes are exactly the bytes sent
 */
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New marshals data into an envelope stamped with at in UTC
func New(eventType string, at time.Time, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s data: %w", eventType, err)
	}
	e := Envelope{Type: eventType, Timestamp: at.UTC(), Data: raw}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func (e Envelope) Validate() error {
	if !typePattern.MatchString(e.Type) {
		return fmt.Errorf("invalid event type %q", e.Type)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("event %s has no timestamp", e.Type)
	}
	if len(e.Data) == 0 || !json.Valid(e.Data) {
		return fmt.Errorf("event %s data is not valid JSON", e.Type)
	}
	return nil
}

// Bytes returns the compact JSON body that gets signed
func (e Envelope) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// Parse decodes and validates a received body
func Parse(body []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// Decode unmarshals the envelope data into v
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decoding %s data: %w", e.Type, err)
	}
	return nil
}
