package gateway_test

import (
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_HealthStateMachine(t *testing.T) {
	t.Run("success - stays healthy below threshold", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.MercadoPago}, gateway.TrackerOptions{FailoverThreshold: 3})

		tr.RecordOutcome(gateway.MercadoPago, false, 10*time.Millisecond)
		tr.RecordOutcome(gateway.MercadoPago, false, 10*time.Millisecond)

		h, ok := tr.Health(gateway.MercadoPago)
		require.True(t, ok)
		assert.True(t, h.Healthy)
		assert.Equal(t, 2, h.ConsecutiveFailures)
	})

	t.Run("success - flips unhealthy at threshold", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.MercadoPago}, gateway.TrackerOptions{FailoverThreshold: 3})

		for i := 0; i < 3; i++ {
			tr.RecordOutcome(gateway.MercadoPago, false, 10*time.Millisecond)
		}

		assert.False(t, tr.IsHealthy(gateway.MercadoPago))
	})

	t.Run("success - recovers on first success", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.MercadoPago}, gateway.TrackerOptions{FailoverThreshold: 3})
		for i := 0; i < 5; i++ {
			tr.RecordOutcome(gateway.MercadoPago, false, 10*time.Millisecond)
		}
		require.False(t, tr.IsHealthy(gateway.MercadoPago))

		tr.RecordOutcome(gateway.MercadoPago, true, 10*time.Millisecond)

		h, _ := tr.Health(gateway.MercadoPago)
		assert.True(t, h.Healthy)
		assert.Equal(t, 0, h.ConsecutiveFailures)
	})

	t.Run("success - success rate derived from counters", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.Decidir}, gateway.TrackerOptions{})
		h, _ := tr.Health(gateway.Decidir)
		assert.Equal(t, 100.0, h.SuccessRate)

		tr.RecordOutcome(gateway.Decidir, true, time.Millisecond)
		tr.RecordOutcome(gateway.Decidir, true, time.Millisecond)
		tr.RecordOutcome(gateway.Decidir, true, time.Millisecond)
		tr.RecordOutcome(gateway.Decidir, false, time.Millisecond)

		h, _ = tr.Health(gateway.Decidir)
		m, _ := tr.Metrics(gateway.Decidir)
		assert.Equal(t, 75.0, h.SuccessRate)
		assert.Equal(t, m.SuccessRate(), h.SuccessRate)
	})

	t.Run("error - unknown gateway is ignored", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.Decidir}, gateway.TrackerOptions{})
		assert.False(t, tr.RecordOutcome("unknown", true, time.Millisecond))
		assert.False(t, tr.IsHealthy("unknown"))
	})
}

func TestTracker_MovingAverage(t *testing.T) {
	t.Run("success - first sample seeds the average", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.PayU}, gateway.TrackerOptions{SmoothingAlpha: 0.2})
		tr.RecordOutcome(gateway.PayU, true, 100*time.Millisecond)

		m, _ := tr.Metrics(gateway.PayU)
		assert.InDelta(t, 100.0, m.AverageResponseTimeMs, 1e-9)
	})

	t.Run("success - known sequence", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.PayU}, gateway.TrackerOptions{SmoothingAlpha: 0.2})
		for _, ms := range []int{100, 200, 300} {
			tr.RecordOutcome(gateway.PayU, true, time.Duration(ms)*time.Millisecond)
		}

		// 100 -> 0.2*200+0.8*100=120 -> 0.2*300+0.8*120=156
		m, _ := tr.Metrics(gateway.PayU)
		assert.InDelta(t, 156.0, m.AverageResponseTimeMs, 1e-9)
		assert.Equal(t, int64(3), m.TotalRequests)
		assert.Equal(t, int64(3), m.SuccessfulRequests)
		assert.Equal(t, int64(0), m.FailedRequests)
	})

	t.Run("success - recent samples dominate", func(t *testing.T) {
		tr := gateway.NewTracker([]gateway.ID{gateway.PayU}, gateway.TrackerOptions{SmoothingAlpha: 0.2})
		for i := 0; i < 50; i++ {
			tr.RecordOutcome(gateway.PayU, true, 100*time.Millisecond)
		}
		for i := 0; i < 30; i++ {
			tr.RecordOutcome(gateway.PayU, true, 1000*time.Millisecond)
		}

		m, _ := tr.Metrics(gateway.PayU)
		assert.InDelta(t, 1000.0, m.AverageResponseTimeMs, 5.0)
	})

	t.Run("success - smooth formula", func(t *testing.T) {
		assert.InDelta(t, 120.0, gateway.Smooth(100, 200, 0.2), 1e-9)
		assert.InDelta(t, 200.0, gateway.Smooth(100, 200, 1), 1e-9)
	})
}

func TestTracker_Concurrency(t *testing.T) {
	ids := []gateway.ID{gateway.MercadoPago, gateway.Decidir}
	tr := gateway.NewTracker(ids, gateway.TrackerOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids[i%2]
			tr.RecordOutcome(id, i%3 != 0, time.Millisecond)
			_ = tr.HealthSnapshot()
		}()
	}
	wg.Wait()

	var total int64
	for _, m := range tr.MetricsSnapshot() {
		assert.Equal(t, m.TotalRequests, m.SuccessfulRequests+m.FailedRequests)
		total += m.TotalRequests
	}
	assert.Equal(t, int64(200), total)
}
