package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

/* HTTP layer DTOs for the payment API
 * gateway.Request already carries json tags and is decoded directly
 */

type refundRequest struct {
	Amount *float64 `json:"amount,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

type metricsResponse struct {
	Gateways []gateway.Metrics `json:"gateways"`
	Summary  gateway.Summary   `json:"summary"`
}

// postPayment handles POST /v1/payments
func postPayment(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gateway.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid request body: "+err.Error())
			return
		}
		res, err := payments.CreatePayment(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	})
}

// getPayment handles GET /v1/payments/{id}
func getPayment(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := payments.GetPayment(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

// postRefund handles POST /v1/payments/{id}/refunds, an empty body refunds in full
func postRefund(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req refundRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				badRequest(w, "invalid request body: "+err.Error())
				return
			}
		}
		res, err := payments.ProcessRefund(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

func getGatewayHealth(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payments.GatewayHealth())
	})
}

func getGatewayMetrics(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metricsResponse{
			Gateways: payments.GatewayMetrics(),
			Summary:  payments.Summary(),
		})
	})
}

// getCommission handles GET /v1/gateways/{gateway}/commission?amount=&provider_id=
func getCommission(payments gateway.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
		if err != nil {
			badRequest(w, "amount must be a number")
			return
		}
		c, err := payments.CalculateCommission(r.Context(), gateway.ID(chi.URLParam(r, "gateway")), amount, r.URL.Query().Get("provider_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	})
}
