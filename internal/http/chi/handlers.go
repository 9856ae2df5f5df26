package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
)

// WebhookSecrets tells which gateways exist and how their notifications are signed
type WebhookSecrets interface {
	Exists(id gateway.ID) bool
	WebhookSecret(id gateway.ID) (signature.Secret, bool)
}

// Deps groups what the API serves. Metrics is optional.
type Deps struct {
	Payments   gateway.UseCase
	Monitoring monitoring.UseCase
	Secrets    WebhookSecrets
	Metrics    http.Handler
	Now        func() time.Time
}

// Handlers sets up the orchestrator API routes
func Handlers(ctx context.Context, deps Deps) *chi.Mux {
	logger := httplog.NewLogger("payment-gateway-orchestrator", httplog.Options{
		JSON: true,
	})
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/payments", postPayment(deps.Payments))
		r.Method(http.MethodGet, "/payments/{id}", getPayment(deps.Payments))
		r.Method(http.MethodPost, "/payments/{id}/refunds", postRefund(deps.Payments))

		r.Method(http.MethodPost, "/webhooks", postWebhook(deps.Payments))
		r.Method(http.MethodPost, "/webhooks/{gateway}", postGatewayWebhook(deps.Payments, deps.Secrets, deps.Now))

		r.Method(http.MethodGet, "/gateways/health", getGatewayHealth(deps.Payments))
		r.Method(http.MethodGet, "/gateways/metrics", getGatewayMetrics(deps.Payments))
		r.Method(http.MethodGet, "/gateways/{gateway}/commission", getCommission(deps.Payments))

		r.Method(http.MethodGet, "/monitoring/health", getHealthStatus(deps.Monitoring))
		r.Method(http.MethodGet, "/monitoring/report", getReport(deps.Monitoring, deps.Now))
		r.Method(http.MethodGet, "/monitoring/events", getEvents(deps.Monitoring, deps.Now))
		r.Method(http.MethodGet, "/alerts", getAlerts(deps.Monitoring))
		r.Method(http.MethodPost, "/alerts/{id}/resolve", resolveAlert(deps.Monitoring))
	})

	return r
}
