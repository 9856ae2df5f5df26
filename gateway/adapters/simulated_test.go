package adapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulated(t *testing.T) {
	ctx := context.Background()
	req := gateway.Request{
		BookingID:   "b-1",
		Amount:      200,
		Currency:    "ARS",
		ClientEmail: "a@b.com",
		Metadata:    map[string]string{gateway.MetadataPaymentID: "pay-1"},
	}

	t.Run("success - full lifecycle", func(t *testing.T) {
		s := adapters.NewSimulated(adapters.SimulatedConfig{Gateway: gateway.TodoPago, SuccessRate: 1, CommissionRate: 0.05, Seed: 1})

		res, err := s.CreatePayment(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, gateway.TodoPago, res.Gateway)
		assert.Equal(t, gateway.Approved, res.Status)

		got, err := s.GetPayment(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, res.ID, got.ID)

		wh, err := s.ProcessWebhook(ctx, map[string]any{"external_id": res.ID, "status": "cancelled"})
		require.NoError(t, err)
		assert.True(t, wh.Success)
		assert.Equal(t, "pay-1", wh.PaymentID)
		assert.Equal(t, gateway.Cancelled, wh.Status)

		partial := 50.0
		refund, err := s.ProcessRefund(ctx, res.ID, &partial, "partial")
		require.NoError(t, err)
		assert.Equal(t, gateway.Refunded, refund.Status)

		_, err = s.ProcessRefund(ctx, res.ID, nil, "rest")
		require.NoError(t, err)

		_, err = s.ProcessRefund(ctx, res.ID, &partial, "again")
		assert.True(t, gateway.IsValidation(err))

		c, err := s.CalculateCommission(ctx, 200, "")
		require.NoError(t, err)
		assert.Equal(t, "10", c.CommissionAmount.String())
	})

	t.Run("error - declines at zero success rate", func(t *testing.T) {
		s := adapters.NewSimulated(adapters.SimulatedConfig{Gateway: gateway.PayU, SuccessRate: 0, Seed: 1})

		_, err := s.CreatePayment(ctx, req)

		assert.Equal(t, "PROVIDER_ERROR", gateway.ErrorCode(err))
	})

	t.Run("error - outage fails calls and pings", func(t *testing.T) {
		s := adapters.NewSimulated(adapters.SimulatedConfig{Gateway: gateway.PayU, SuccessRate: 1, Seed: 1})
		s.SetDown(true)

		_, err := s.CreatePayment(ctx, req)
		assert.Equal(t, "PROVIDER_DOWN", gateway.ErrorCode(err))
		assert.Error(t, s.Ping(ctx))

		s.SetDown(false)
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("error - latency honors the deadline", func(t *testing.T) {
		s := adapters.NewSimulated(adapters.SimulatedConfig{Gateway: gateway.PayU, SuccessRate: 1, Latency: time.Second, Seed: 1})
		tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := s.CreatePayment(tctx, req)

		assert.Equal(t, "TIMEOUT", gateway.ErrorCode(err))
	})

	t.Run("error - unknown payment", func(t *testing.T) {
		s := adapters.NewSimulated(adapters.SimulatedConfig{Gateway: gateway.PayU, SuccessRate: 1, Seed: 1})

		_, err := s.GetPayment(ctx, "nope")
		assert.True(t, gateway.IsValidation(err))

		wh, err := s.ProcessWebhook(ctx, map[string]any{"external_id": "nope"})
		require.NoError(t, err)
		assert.False(t, wh.Success)
	})
}
