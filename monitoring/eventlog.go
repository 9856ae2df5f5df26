package monitoring

import (
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

// DefaultBufferSize is the number of most recent events kept
const DefaultBufferSize = 10000

/* EventLog is a bounded ring buffer of outcome events in ingestion order
 * Not safe for concurrent use, the engine serializes access
 */
type EventLog struct {
	buf   []gateway.OutcomeEvent
	start int
	size  int
}

func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &EventLog{buf: make([]gateway.OutcomeEvent, capacity)}
}

// Append adds an event, overwriting the oldest one when full
func (l *EventLog) Append(e gateway.OutcomeEvent) {
	if l.size < len(l.buf) {
		l.buf[(l.start+l.size)%len(l.buf)] = e
		l.size++
		return
	}
	l.buf[l.start] = e
	l.start = (l.start + 1) % len(l.buf)
}

// Len returns the number of retained events
func (l *EventLog) Len() int {
	return l.size
}

// Cap returns the buffer capacity
func (l *EventLog) Cap() int {
	return len(l.buf)
}

func (l *EventLog) at(i int) gateway.OutcomeEvent {
	return l.buf[(l.start+i)%len(l.buf)]
}

// Between returns copies of events with from <= Timestamp < to
func (l *EventLog) Between(from, to time.Time) []gateway.OutcomeEvent {
	var out []gateway.OutcomeEvent
	for i := 0; i < l.size; i++ {
		e := l.at(i)
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

// Since returns copies of events with Timestamp >= from
func (l *EventLog) Since(from time.Time) []gateway.OutcomeEvent {
	var out []gateway.OutcomeEvent
	for i := 0; i < l.size; i++ {
		e := l.at(i)
		if !e.Timestamp.Before(from) {
			out = append(out, e)
		}
	}
	return out
}

// Latest returns the most recently appended event
func (l *EventLog) Latest() (gateway.OutcomeEvent, bool) {
	if l.size == 0 {
		return gateway.OutcomeEvent{}, false
	}
	return l.at(l.size - 1), true
}

/* Trim drops events older than before and returns how many went
 * Events are kept in ingestion order, so only a leading run is removed
 */
func (l *EventLog) Trim(before time.Time) int {
	removed := 0
	for l.size > 0 && l.at(0).Timestamp.Before(before) {
		l.buf[l.start] = gateway.OutcomeEvent{}
		l.start = (l.start + 1) % len(l.buf)
		l.size--
		removed++
	}
	return removed
}
