package chi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
)

const maxWebhookBody = 1 << 20

// postWebhook handles POST /v1/webhooks, the gateway is detected from the payload
func postWebhook(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			badRequest(w, "failed to read request body")
			return
		}
		processWebhook(w, r, payments, body, "")
	})
}

/* postGatewayWebhook handles POST /v1/webhooks/{gateway}
 * When the catalog holds a secret for the gateway the Standard Webhooks
 * signature is required
 */
func postGatewayWebhook(payments gateway.UseCase, secrets WebhookSecrets, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := gateway.ID(chi.URLParam(r, "gateway"))
		if !secrets.Exists(id) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("gateway not found: %s", id), Code: "NOT_FOUND"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			badRequest(w, "failed to read request body")
			return
		}
		defer r.Body.Close()

		if secret, ok := secrets.WebhookSecret(id); ok {
			if err := signature.VerifyHeaders(r.Header, body, now(), signature.DefaultTolerance, secret); err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "INVALID_SIGNATURE"})
				return
			}
		}
		processWebhook(w, r, payments, body, id)
	})
}

func processWebhook(w http.ResponseWriter, r *http.Request, payments gateway.UseCase, body []byte, hint gateway.ID) {
	var notification map[string]any
	if err := json.Unmarshal(body, &notification); err != nil {
		badRequest(w, "webhook body must be a JSON object")
		return
	}
	res, err := payments.ProcessWebhook(r.Context(), notification, hint)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
