package adapters_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPAdapter(t *testing.T, handler http.HandlerFunc, mutate ...func(*adapters.HTTPConfig)) *adapters.HTTP {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := adapters.HTTPConfig{
		Gateway:         gateway.Decidir,
		BaseURL:         srv.URL,
		Timeout:         2 * time.Second,
		CommissionRate:  0.04,
		BreakerFailures: 3,
		BreakerOpenTime: time.Minute,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	a, err := adapters.NewHTTP(cfg)
	require.NoError(t, err)
	return a
}

func TestNewHTTP(t *testing.T) {
	_, err := adapters.NewHTTP(adapters.HTTPConfig{BaseURL: "http://localhost"})
	assert.Error(t, err)

	_, err = adapters.NewHTTP(adapters.HTTPConfig{Gateway: gateway.PayU, BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestHTTP_CreatePayment(t *testing.T) {
	ctx := context.Background()
	req := gateway.Request{
		BookingID:   "booking-1",
		Amount:      1500,
		Currency:    "ARS",
		ClientEmail: "client@example.com",
		Metadata:    map[string]string{gateway.MetadataPaymentID: "pay-1"},
	}

	t.Run("success - posts body and normalizes response", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/payments", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 1500.0, body["amount"])
			assert.Equal(t, "booking-1", body["external_reference"])
			assert.Equal(t, "pay-1", body["metadata"].(map[string]any)["payment_id"])

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"ext-9","status":"approved","external_reference":"booking-1"}`))
		})

		res, err := a.CreatePayment(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "ext-9", res.ID)
		assert.Equal(t, gateway.Decidir, res.Gateway)
		assert.Equal(t, gateway.Approved, res.Status)
		assert.Equal(t, "booking-1", res.ExternalReference)
	})

	t.Run("error - 4xx is a caller fault", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"invalid card"}`))
		})

		_, err := a.CreatePayment(ctx, req)

		var ve *gateway.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "invalid card", ve.Message)
	})

	t.Run("error - 5xx and throttling are gateway faults", func(t *testing.T) {
		for _, status := range []int{http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusRequestTimeout} {
			a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})

			_, err := a.CreatePayment(ctx, req)

			var ge *gateway.GatewayError
			require.True(t, errors.As(err, &ge), "status %d", status)
			assert.Equal(t, gateway.Decidir, ge.Gateway)
			assert.Contains(t, ge.Code, "HTTP_")
		}
	})

	t.Run("error - response without id", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"approved"}`))
		})

		_, err := a.CreatePayment(ctx, req)

		assert.Equal(t, "MALFORMED_RESPONSE", gateway.ErrorCode(err))
	})

	t.Run("error - malformed json", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := a.CreatePayment(ctx, req)

		assert.Equal(t, "MALFORMED_RESPONSE", gateway.ErrorCode(err))
	})
}

func TestHTTP_CircuitBreaker(t *testing.T) {
	ctx := context.Background()
	req := gateway.Request{Amount: 100, Currency: "ARS", ClientEmail: "a@b.com"}

	t.Run("success - opens after consecutive gateway faults", func(t *testing.T) {
		var calls int32
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		})

		for i := 0; i < 3; i++ {
			_, err := a.CreatePayment(ctx, req)
			assert.Equal(t, "HTTP_502", gateway.ErrorCode(err))
		}

		_, err := a.CreatePayment(ctx, req)

		assert.Equal(t, "CIRCUIT_OPEN", gateway.ErrorCode(err))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Equal(t, "open", a.State())
	})

	t.Run("success - caller faults do not trip the breaker", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		for i := 0; i < 5; i++ {
			_, err := a.CreatePayment(ctx, req)
			assert.True(t, gateway.IsValidation(err))
		}
		assert.Equal(t, "closed", a.State())
	})

	t.Run("success - ping bypasses an open breaker", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		})
		for i := 0; i < 3; i++ {
			_, _ = a.CreatePayment(ctx, req)
		}
		require.Equal(t, "open", a.State())

		assert.NoError(t, a.Ping(ctx))
	})
}

func TestHTTP_RefundAndGet(t *testing.T) {
	ctx := context.Background()

	a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/payments/ext-1":
			_, _ = w.Write([]byte(`{"id":"ext-1","status":"approved"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/payments/ext-1/refunds":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 50.0, body["amount"])
			assert.Equal(t, "customer request", body["reason"])
			_, _ = w.Write([]byte(`{"id":"ext-1","status":"refunded"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	res, err := a.GetPayment(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, gateway.Approved, res.Status)

	amount := 50.0
	res, err = a.ProcessRefund(ctx, "ext-1", &amount, "customer request")
	require.NoError(t, err)
	assert.Equal(t, gateway.Refunded, res.Status)

	_, err = a.GetPayment(ctx, "missing")
	assert.True(t, gateway.IsValidation(err))
}

func TestHTTP_ProcessWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("success - direct reference", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected call %s", r.URL.Path)
		})

		res, err := a.ProcessWebhook(ctx, map[string]any{"payment_id": "pay-1", "status": "rejected", "amount": 10.0})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "pay-1", res.PaymentID)
		assert.Equal(t, gateway.Rejected, res.Status)
		assert.Equal(t, 10.0, res.Amount)
	})

	t.Run("success - resolves data.id through the gateway", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/777", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"777","status":"approved","amount":99.5,"metadata":{"payment_id":"pay-2"}}`))
		})

		res, err := a.ProcessWebhook(ctx, map[string]any{"type": "payment", "data": map[string]any{"id": "777"}})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "pay-2", res.PaymentID)
		assert.Equal(t, gateway.Approved, res.Status)
		assert.Equal(t, 99.5, res.Amount)
	})

	t.Run("success - unreferenced notification is reported, not failed", func(t *testing.T) {
		a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {})

		res, err := a.ProcessWebhook(ctx, map[string]any{"foo": "bar"})

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})
}

func TestHTTP_CalculateCommission(t *testing.T) {
	a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {})

	c, err := a.CalculateCommission(context.Background(), 1000, "provider-1")

	require.NoError(t, err)
	assert.Equal(t, "40", c.CommissionAmount.String())
	assert.Equal(t, "960", c.ProviderAmount.String())
}

func TestHTTP_Ping(t *testing.T) {
	a := newHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := a.Ping(context.Background())

	assert.Equal(t, "HTTP_503", gateway.ErrorCode(err))
}
