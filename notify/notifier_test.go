package notify_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	"github.com/marcelsud/payment-gateway-orchestrator/notify"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/payload"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type received struct {
	header http.Header
	body   []byte
}

func receiver(t *testing.T, statuses ...int) (*httptest.Server, *[]received, *sync.Mutex) {
	t.Helper()
	var (
		mu    sync.Mutex
		got   []received
		calls int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, received{header: r.Header.Clone(), body: body})
		mu.Unlock()

		i := int(atomic.AddInt32(&calls, 1)) - 1
		status := http.StatusOK
		if i < len(statuses) {
			status = statuses[i]
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &mu
}

func newNotifier(t *testing.T, url string, secret signature.Secret, maxRetries int) *notify.Notifier {
	t.Helper()
	n, err := notify.New(notify.Config{
		URL:            url,
		Secret:         secret,
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		QueueSize:      2,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return n
}

func deliverNext(t *testing.T, n *notify.Notifier, eventType string, data any) {
	t.Helper()
	require.True(t, n.Enqueue(eventType, data))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = n.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		s := n.Stats()
		return s.Delivered+s.Failed == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNotifier_Deliver(t *testing.T) {
	secret, err := signature.ParseSecret(testSecret)
	require.NoError(t, err)

	t.Run("success - signed standard webhook", func(t *testing.T) {
		srv, got, mu := receiver(t)
		n := newNotifier(t, srv.URL, secret, 3)

		deliverNext(t, n, payload.TypeAlertRaised, monitoring.Alert{ID: "a-1", Type: monitoring.ErrorRate, Severity: monitoring.High, Gateway: gateway.MercadoPago})

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, *got, 1)
		r := (*got)[0]
		assert.NoError(t, signature.VerifyHeaders(r.header, r.body, time.Now(), signature.DefaultTolerance, secret))

		env, err := payload.Parse(r.body)
		require.NoError(t, err)
		assert.Equal(t, payload.TypeAlertRaised, env.Type)
		var alert struct {
			ID       string `json:"id"`
			Severity string `json:"severity"`
			Gateway  string `json:"gateway"`
		}
		require.NoError(t, env.Decode(&alert))
		assert.Equal(t, "a-1", alert.ID)
		assert.Equal(t, "high", alert.Severity)
		assert.Equal(t, "mercadopago", alert.Gateway)
		assert.Equal(t, int64(1), n.Stats().Delivered)
	})

	t.Run("success - retries server errors", func(t *testing.T) {
		srv, got, mu := receiver(t, http.StatusServiceUnavailable, http.StatusTooManyRequests)
		n := newNotifier(t, srv.URL, secret, 3)

		deliverNext(t, n, payload.TypeHealthChanged, map[string]string{"overall": "degraded"})

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, *got, 3)
		assert.Equal(t, (*got)[0].header.Get(signature.HeaderID), (*got)[2].header.Get(signature.HeaderID))
		assert.Equal(t, int64(1), n.Stats().Delivered)
	})

	t.Run("error - NoRetries makes a single attempt", func(t *testing.T) {
		srv, got, mu := receiver(t, 503, 503)
		n := newNotifier(t, srv.URL, secret, notify.NoRetries)

		deliverNext(t, n, payload.TypeHealthChanged, map[string]string{"overall": "unhealthy"})

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, *got, 1)
		assert.Equal(t, int64(1), n.Stats().Failed)
	})

	t.Run("success - zero retries falls back to the default", func(t *testing.T) {
		srv, got, mu := receiver(t, 503, 503, 503, 503, 503)
		n := newNotifier(t, srv.URL, secret, 0)

		deliverNext(t, n, payload.TypeHealthChanged, map[string]string{"overall": "degraded"})

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, *got, notify.DefaultMaxRetries+1)
		assert.Equal(t, int64(1), n.Stats().Delivered)
	})

	t.Run("error - gives up after max retries", func(t *testing.T) {
		srv, got, mu := receiver(t, 500, 500, 500, 500)
		n := newNotifier(t, srv.URL, secret, 2)

		deliverNext(t, n, payload.TypeHealthChanged, map[string]string{"overall": "unhealthy"})

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, *got, 3)
		assert.Equal(t, int64(1), n.Stats().Failed)
	})

	t.Run("error - receiver rejection is not retried", func(t *testing.T) {
		srv, got, mu := receiver(t, http.StatusBadRequest)
		n := newNotifier(t, srv.URL, secret, 3)

		deliverNext(t, n, payload.TypeHealthChanged, map[string]string{"overall": "unhealthy"})

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, *got, 1)
		assert.Equal(t, int64(1), n.Stats().Failed)
	})

	t.Run("success - unsigned without secret", func(t *testing.T) {
		srv, got, mu := receiver(t)
		n := newNotifier(t, srv.URL, signature.Secret{}, 1)

		deliverNext(t, n, payload.TypeHealthChanged, map[string]string{"overall": "healthy"})

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, *got, 1)
		assert.NotEmpty(t, (*got)[0].header.Get(signature.HeaderID))
		assert.Empty(t, (*got)[0].header.Get(signature.HeaderSignature))
	})
}

func TestNotifier_Deliver_Lifecycle(t *testing.T) {
	srv, _, _ := receiver(t, http.StatusBadGateway)
	n := newNotifier(t, srv.URL, signature.Secret{}, 2)

	notif := notify.Notification{ID: "msg_1", Type: payload.TypeHealthChanged, Payload: []byte(`{}`), Status: notify.Pending, MaxRetries: 2}
	n.Deliver(context.Background(), &notif)

	assert.Equal(t, notify.Delivered, notif.Status)
	assert.Equal(t, 1, notif.RetryCount)
	assert.Contains(t, notif.LastError, "502")
	assert.True(t, notif.Status.IsFinal())
}

func TestNotifier_Enqueue(t *testing.T) {
	t.Run("success - full queue drops", func(t *testing.T) {
		n := newNotifier(t, "http://127.0.0.1:1", signature.Secret{}, 1)

		assert.True(t, n.Enqueue(payload.TypeHealthChanged, 1))
		assert.True(t, n.Enqueue(payload.TypeHealthChanged, 2))
		assert.False(t, n.Enqueue(payload.TypeHealthChanged, 3))

		assert.Equal(t, 2, n.Pending())
		assert.Equal(t, notify.Stats{Queued: 2, Dropped: 1}, n.Stats())
	})

	t.Run("error - invalid event type is not queued", func(t *testing.T) {
		n := newNotifier(t, "http://127.0.0.1:1", signature.Secret{}, 1)
		assert.False(t, n.Enqueue("bad type", 1))
		assert.Equal(t, 0, n.Pending())
	})

	t.Run("error - url is required", func(t *testing.T) {
		_, err := notify.New(notify.Config{})
		assert.Error(t, err)
	})
}

func TestNotifier_Subscribe(t *testing.T) {
	srv, got, mu := receiver(t)
	n := newNotifier(t, srv.URL, signature.Secret{}, 1)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	engine := monitoring.NewEngine(monitoring.Options{Now: func() time.Time { return now }, Rules: []monitoring.Rule{}, Logger: zerolog.Nop()})
	n.Subscribe(engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = n.Run(ctx) }()

	engine.Ingest(gateway.OutcomeEvent{Timestamp: now, Gateway: gateway.PayU, Action: gateway.ActionFailed, ErrorCode: "TIMEOUT"})
	engine.EvaluateHealth()

	require.Eventually(t, func() bool { return n.Stats().Delivered == 2 }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	types := map[string]bool{}
	for _, r := range *got {
		env, err := payload.Parse(r.body)
		require.NoError(t, err)
		types[env.Type] = true
	}
	assert.Equal(t, map[string]bool{payload.TypeAlertRaised: true, payload.TypeHealthChanged: true}, types)
}
