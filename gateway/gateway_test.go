package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityProfile_Accepts(t *testing.T) {
	profile := gateway.CapabilityProfile{MinAmount: 100, MaxAmount: 500000, Installments: false}

	assert.True(t, profile.Accepts(gateway.Request{Amount: 100}))
	assert.True(t, profile.Accepts(gateway.Request{Amount: 500000, Installments: 1}))
	assert.False(t, profile.Accepts(gateway.Request{Amount: 99.99}))
	assert.False(t, profile.Accepts(gateway.Request{Amount: 500000.01}))
	assert.False(t, profile.Accepts(gateway.Request{Amount: 1000, Installments: 6}))

	unbounded := gateway.CapabilityProfile{Installments: true}
	assert.True(t, unbounded.Accepts(gateway.Request{Amount: 1e9, Installments: 12}))
}

func TestRequest_Validate(t *testing.T) {
	valid := gateway.Request{Amount: 150, Currency: "ARS", ClientEmail: "a@b.com"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *gateway.Request)
	}{
		{"zero amount", func(r *gateway.Request) { r.Amount = 0 }},
		{"negative amount", func(r *gateway.Request) { r.Amount = -1 }},
		{"no currency", func(r *gateway.Request) { r.Currency = "" }},
		{"no email", func(r *gateway.Request) { r.ClientEmail = "" }},
		{"negative installments", func(r *gateway.Request) { r.Installments = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			assert.True(t, gateway.IsValidation(err))
		})
	}
}

func TestStatus(t *testing.T) {
	for _, s := range []gateway.Status{gateway.Pending, gateway.Authorized, gateway.Approved, gateway.Rejected, gateway.Cancelled, gateway.Refunded} {
		assert.Equal(t, s, gateway.NewStatus(s.String()))
		assert.NoError(t, s.Validate())
	}
	assert.Error(t, gateway.Status(0).Validate())
	assert.True(t, gateway.Refunded.IsFinal())
	assert.False(t, gateway.Approved.IsFinal())

	data, err := json.Marshal(gateway.Approved)
	require.NoError(t, err)
	assert.JSONEq(t, `"APPROVED"`, string(data))

	var s gateway.Status
	require.NoError(t, json.Unmarshal([]byte(`"REFUNDED"`), &s))
	assert.Equal(t, gateway.Refunded, s)
}

func TestErrors(t *testing.T) {
	t.Run("aggregate lists attempts in order and unwraps last error", func(t *testing.T) {
		last := &gateway.GatewayError{Gateway: gateway.Decidir, Code: "HTTP_503", Message: "unavailable"}
		err := &gateway.AggregateFailureError{
			Attempts: []gateway.Attempt{
				{Gateway: gateway.MercadoPago, Err: errors.New("boom")},
				{Gateway: gateway.Decidir, Err: last},
			},
			LastErr: last,
		}

		assert.Equal(t, []gateway.ID{gateway.MercadoPago, gateway.Decidir}, err.Attempted())
		var ge *gateway.GatewayError
		require.True(t, errors.As(err, &ge))
		assert.Equal(t, gateway.Decidir, ge.Gateway)
		assert.Contains(t, err.Error(), "mercadopago, decidir")
	})

	t.Run("error codes", func(t *testing.T) {
		assert.Equal(t, "", gateway.ErrorCode(nil))
		assert.Equal(t, "HTTP_500", gateway.ErrorCode(&gateway.GatewayError{Code: "HTTP_500"}))
		assert.Equal(t, "VALIDATION_ERROR", gateway.ErrorCode(&gateway.ValidationError{Message: "x"}))
		assert.Equal(t, "TIMEOUT", gateway.ErrorCode(fmt.Errorf("calling: %w", context.DeadlineExceeded)))
		assert.Equal(t, "UNKNOWN", gateway.ErrorCode(errors.New("other")))
	})

	t.Run("not found is detectable through wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading: %w", &gateway.NotFoundError{PaymentID: "p-1"})
		assert.True(t, gateway.IsNotFound(err))
		assert.False(t, gateway.IsValidation(err))
	})
}

func TestNewCommission(t *testing.T) {
	c := gateway.NewCommission(1000, 0.035)

	assert.Equal(t, "35", c.CommissionAmount.String())
	assert.Equal(t, "965", c.ProviderAmount.String())
	assert.True(t, c.BaseAmount.Equal(c.CommissionAmount.Add(c.ProviderAmount)))

	c = gateway.NewCommission(99.99, 0.05)
	assert.Equal(t, "5", c.CommissionAmount.String())
	assert.Equal(t, "94.99", c.ProviderAmount.String())
}
