package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

func TestEventLog(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(min int) gateway.OutcomeEvent {
		return gateway.OutcomeEvent{Timestamp: base.Add(time.Duration(min) * time.Minute), Gateway: gateway.PayU, Action: gateway.ActionCreated}
	}

	t.Run("success - between is half open", func(t *testing.T) {
		l := NewEventLog(10)
		for i := 0; i < 5; i++ {
			l.Append(at(i))
		}

		got := l.Between(base.Add(time.Minute), base.Add(3*time.Minute))
		require.Len(t, got, 2)
		assert.Equal(t, base.Add(time.Minute), got[0].Timestamp)
		assert.Equal(t, base.Add(2*time.Minute), got[1].Timestamp)
		assert.Len(t, l.Since(base.Add(3*time.Minute)), 2)
	})

	t.Run("success - overwrites the oldest when full", func(t *testing.T) {
		l := NewEventLog(3)
		for i := 0; i < 5; i++ {
			l.Append(at(i))
		}

		assert.Equal(t, 3, l.Len())
		all := l.Since(base)
		require.Len(t, all, 3)
		assert.Equal(t, base.Add(2*time.Minute), all[0].Timestamp)
		latest, ok := l.Latest()
		require.True(t, ok)
		assert.Equal(t, base.Add(4*time.Minute), latest.Timestamp)
	})

	t.Run("success - trim drops the leading run", func(t *testing.T) {
		l := NewEventLog(4)
		for i := 0; i < 6; i++ {
			l.Append(at(i))
		}

		assert.Equal(t, 2, l.Trim(base.Add(4*time.Minute)))
		assert.Equal(t, 2, l.Len())
		l.Append(at(6))
		assert.Len(t, l.Since(base), 3)
	})

	t.Run("success - empty log", func(t *testing.T) {
		l := NewEventLog(0)
		_, ok := l.Latest()
		assert.False(t, ok)
		assert.Equal(t, DefaultBufferSize, l.Cap())
		assert.Equal(t, 0, l.Trim(base))
	})
}
