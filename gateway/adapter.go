package gateway

import "context"

/* Adapter is the uniform capability set every gateway integration exposes
 * Adapters return *ValidationError for caller faults and *GatewayError for
 * anything the next gateway might not suffer from
 */
type Adapter interface {
	CreatePayment(ctx context.Context, req Request) (Result, error)
	GetPayment(ctx context.Context, externalID string) (Result, error)
	/* ProcessRefund refunds a payment, fully when amount is nil */
	ProcessRefund(ctx context.Context, externalID string, amount *float64, reason string) (Result, error)
	ProcessWebhook(ctx context.Context, payload map[string]any) (WebhookResult, error)
	CalculateCommission(ctx context.Context, amount float64, providerID string) (Commission, error)
}

// Pinger is implemented by adapters that support lightweight liveness probes
type Pinger interface {
	Ping(ctx context.Context) error
}
