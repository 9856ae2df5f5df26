package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/sony/gobreaker"
)

/* HTTP adapter for gateways exposing a JSON REST API
 * Every call runs through a circuit breaker. Caller faults (4xx) do not trip it.
 */

const (
	defaultHTTPTimeout     = 10 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerOpenTime = 30 * time.Second
	maxResponseBody        = 1 << 20
	codeCircuitOpen        = "CIRCUIT_OPEN"
	codeNetworkError       = "NETWORK_ERROR"
	codeMalformedResponse  = "MALFORMED_RESPONSE"
	msgReferenceMissing    = "payment reference missing"
)

// HTTPConfig configures an HTTP adapter
type HTTPConfig struct {
	Gateway        gateway.ID
	BaseURL        string
	Timeout        time.Duration
	CommissionRate float64
	// BreakerFailures is the consecutive failure count that opens the circuit
	BreakerFailures uint32
	BreakerOpenTime time.Duration
	Client          *http.Client
}

type HTTP struct {
	id      gateway.ID
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	rate    float64
}

// NewHTTP creates an HTTP adapter
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.Gateway == "" {
		return nil, fmt.Errorf("gateway id cannot be empty")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url for gateway %s: %w", cfg.Gateway, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerOpenTime <= 0 {
		cfg.BreakerOpenTime = defaultBreakerOpenTime
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	failures := cfg.BreakerFailures

	return &HTTP{
		id:      cfg.Gateway,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		rate:    cfg.CommissionRate,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        string(cfg.Gateway),
			MaxRequests: 1,
			Timeout:     cfg.BreakerOpenTime,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || gateway.IsValidation(err)
			},
		}),
	}, nil
}

type paymentBody struct {
	Amount            float64           `json:"amount"`
	Currency          string            `json:"currency"`
	Description       string            `json:"description,omitempty"`
	PaymentMethod     string            `json:"payment_method,omitempty"`
	Installments      int               `json:"installments,omitempty"`
	ExternalReference string            `json:"external_reference,omitempty"`
	Payer             payerBody         `json:"payer"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type payerBody struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type refundBody struct {
	Amount *float64 `json:"amount,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// CreatePayment posts a new payment
func (a *HTTP) CreatePayment(ctx context.Context, req gateway.Request) (gateway.Result, error) {
	body := paymentBody{
		Amount:            req.Amount,
		Currency:          req.Currency,
		Description:       req.Description,
		PaymentMethod:     req.PaymentMethod,
		Installments:      req.Installments,
		ExternalReference: req.BookingID,
		Payer:             payerBody{Email: req.ClientEmail, Name: req.ClientName},
		Metadata:          req.Metadata,
	}
	raw, err := a.do(ctx, http.MethodPost, "/payments", body)
	if err != nil {
		return gateway.Result{}, err
	}
	return a.result(raw)
}

// GetPayment fetches a payment by its gateway id
func (a *HTTP) GetPayment(ctx context.Context, externalID string) (gateway.Result, error) {
	raw, err := a.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(externalID), nil)
	if err != nil {
		return gateway.Result{}, err
	}
	return a.result(raw)
}

// ProcessRefund posts a refund, fully when amount is nil
func (a *HTTP) ProcessRefund(ctx context.Context, externalID string, amount *float64, reason string) (gateway.Result, error) {
	raw, err := a.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(externalID)+"/refunds", refundBody{Amount: amount, Reason: reason})
	if err != nil {
		return gateway.Result{}, err
	}
	res, err := a.result(raw)
	if err != nil {
		return gateway.Result{}, err
	}
	if res.ID == "" {
		res.ID = externalID
	}
	return res, nil
}

/* ProcessWebhook normalizes a notification
 * Notifications carrying only the gateway id (data.id) are resolved by fetching the payment
 */
func (a *HTTP) ProcessWebhook(ctx context.Context, payload map[string]any) (gateway.WebhookResult, error) {
	ref := stringField(payload, "payment_id")
	status := stringField(payload, "status")
	amount := floatField(payload, "amount")

	if ext := nestedID(payload); ext != "" && (ref == "" || status == "") {
		raw, err := a.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(ext), nil)
		if err != nil {
			return gateway.WebhookResult{}, err
		}
		if md, ok := raw["metadata"].(map[string]any); ok && ref == "" {
			ref = stringField(md, gateway.MetadataPaymentID)
		}
		if status == "" {
			status = stringField(raw, "status")
		}
		if amount == 0 {
			amount = floatField(raw, "amount")
		}
	}

	if ref == "" {
		return gateway.WebhookResult{Success: false, ProcessedAt: time.Now(), Error: msgReferenceMissing}, nil
	}
	return gateway.WebhookResult{
		Success:     true,
		PaymentID:   ref,
		Status:      normalizeStatus(status),
		Amount:      amount,
		ProcessedAt: time.Now(),
	}, nil
}

// CalculateCommission applies the configured flat rate
func (a *HTTP) CalculateCommission(ctx context.Context, amount float64, providerID string) (gateway.Commission, error) {
	return gateway.NewCommission(amount, a.rate), nil
}

// Ping checks the gateway health endpoint, bypassing the breaker so probes can detect recovery
func (a *HTTP) Ping(ctx context.Context) error {
	_, err := a.roundTrip(ctx, http.MethodGet, "/health", nil)
	return err
}

// State exposes the breaker state for diagnostics
func (a *HTTP) State() string {
	return a.breaker.State().String()
}

func (a *HTTP) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	out, err := a.breaker.Execute(func() (interface{}, error) {
		return a.roundTrip(ctx, method, path, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &gateway.GatewayError{Gateway: a.id, Code: codeCircuitOpen, Message: "circuit breaker open", Err: err}
	}
	if err != nil {
		return nil, err
	}
	raw, _ := out.(map[string]any)
	return raw, nil
}

func (a *HTTP) roundTrip(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &gateway.ValidationError{Message: fmt.Sprintf("encoding request: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, &gateway.GatewayError{Gateway: a.id, Code: codeNetworkError, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		code := codeNetworkError
		if errors.Is(err, context.DeadlineExceeded) {
			code = "TIMEOUT"
		}
		return nil, &gateway.GatewayError{Gateway: a.id, Code: code, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &gateway.GatewayError{Gateway: a.id, Code: codeNetworkError, Err: fmt.Errorf("reading response: %w", err)}
	}

	var raw map[string]any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil && resp.StatusCode < 400 {
			return nil, &gateway.GatewayError{Gateway: a.id, Code: codeMalformedResponse, Err: err}
		}
	}

	if resp.StatusCode >= 400 {
		return nil, a.statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

// statusError maps 4xx to caller faults, except timeouts and throttling
func (a *HTTP) statusError(status int, raw map[string]any) error {
	msg := stringField(raw, "message")
	if msg == "" {
		msg = stringField(raw, "error")
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
		return &gateway.ValidationError{Message: msg, Details: map[string]any{"gateway": a.id, "status": status}}
	}
	return &gateway.GatewayError{Gateway: a.id, Code: fmt.Sprintf("HTTP_%d", status), Message: msg}
}

func (a *HTTP) result(raw map[string]any) (gateway.Result, error) {
	id := stringField(raw, "id")
	if id == "" {
		return gateway.Result{}, &gateway.GatewayError{Gateway: a.id, Code: codeMalformedResponse, Message: "response without payment id"}
	}
	return gateway.Result{
		ID:                id,
		Gateway:           a.id,
		Status:            normalizeStatus(stringField(raw, "status")),
		ExternalReference: stringField(raw, "external_reference"),
		Raw:               raw,
		CreatedAt:         time.Now(),
	}, nil
}

// normalizeStatus maps provider status names onto the payment lifecycle
func normalizeStatus(s string) gateway.Status {
	switch strings.ToLower(s) {
	case "approved", "accredited", "paid", "4":
		return gateway.Approved
	case "authorized", "preauthorized":
		return gateway.Authorized
	case "rejected", "declined", "6":
		return gateway.Rejected
	case "cancelled", "canceled", "5":
		return gateway.Cancelled
	case "refunded", "charged_back":
		return gateway.Refunded
	default:
		return gateway.Pending
	}
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func floatField(m map[string]any, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func nestedID(payload map[string]any) string {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(data, "id")
}
