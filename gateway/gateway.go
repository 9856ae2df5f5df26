package gateway

import (
	"time"

	"github.com/shopspring/decimal"
)

/* ID identifies a payment gateway
 * Any id declared in the catalog is valid, the constants below are the ones
 * with a built-in static preference
 */
type ID string

const (
	MercadoPago ID = "mercadopago"
	Decidir     ID = "decidir"
	TodoPago    ID = "todopago"
	PayU        ID = "payu"
)

// DefaultPreference is the static tie-break order used when ranking candidates
var DefaultPreference = []ID{MercadoPago, Decidir, TodoPago, PayU}

func (id ID) String() string {
	return string(id)
}

/* CapabilityProfile describes which requests a gateway can serve
 * It is fixed at startup and never mutated afterwards
 */
type CapabilityProfile struct {
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
	Installments bool    `json:"installments"`
}

// Accepts reports whether the gateway can serve the request
func (p CapabilityProfile) Accepts(req Request) bool {
	if req.Amount < p.MinAmount {
		return false
	}
	if p.MaxAmount > 0 && req.Amount > p.MaxAmount {
		return false
	}
	if req.Installments > 1 && !p.Installments {
		return false
	}
	return true
}

/* Request is a payment request as accepted from callers
 * Uses value semantics as it represents data, not behavior
 */
type Request struct {
	BookingID        string            `json:"booking_id"`
	Amount           float64           `json:"amount"`
	Currency         string            `json:"currency"`
	PaymentMethod    string            `json:"payment_method"`
	Installments     int               `json:"installments"`
	Description      string            `json:"description"`
	ClientEmail      string            `json:"client_email"`
	ClientName       string            `json:"client_name"`
	PreferredGateway ID                `json:"preferred_gateway,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Validate checks the caller-supplied fields
func (r Request) Validate() error {
	if r.Amount <= 0 {
		return &ValidationError{Message: "amount must be greater than zero", Details: map[string]any{"amount": r.Amount}}
	}
	if r.Currency == "" {
		return &ValidationError{Message: "currency is required"}
	}
	if r.ClientEmail == "" {
		return &ValidationError{Message: "client email is required"}
	}
	if r.Installments < 0 {
		return &ValidationError{Message: "installments cannot be negative", Details: map[string]any{"installments": r.Installments}}
	}
	return nil
}

// Result is the normalized outcome of an adapter call
type Result struct {
	ID                string         `json:"id"`
	Gateway           ID             `json:"gateway"`
	Status            Status         `json:"status"`
	ExternalReference string         `json:"external_reference,omitempty"`
	Raw               map[string]any `json:"raw,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// WebhookResult is the normalized outcome of a gateway notification
type WebhookResult struct {
	Success     bool      `json:"success"`
	PaymentID   string    `json:"payment_id,omitempty"`
	Status      Status    `json:"status,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	Error       string    `json:"error,omitempty"`
}

// Commission splits an amount between the platform and the provider
type Commission struct {
	BaseAmount       decimal.Decimal `json:"base_amount"`
	Rate             decimal.Decimal `json:"rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	ProviderAmount   decimal.Decimal `json:"provider_amount"`
}

// NewCommission computes the split of amount at rate, rounded to cents
func NewCommission(amount, rate float64) Commission {
	base := decimal.NewFromFloat(amount)
	r := decimal.NewFromFloat(rate)
	fee := base.Mul(r).Round(2)
	return Commission{
		BaseAmount:       base,
		Rate:             r,
		CommissionAmount: fee,
		ProviderAmount:   base.Sub(fee),
	}
}
