package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
)

type errorResponse struct {
	Error    string         `json:"error"`
	Code     string         `json:"code,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Attempts []attemptView  `json:"attempts,omitempty"`
}

type attemptView struct {
	Gateway    gateway.ID `json:"gateway"`
	Error      string     `json:"error"`
	DurationMs int64      `json:"duration_ms"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError maps domain errors to status codes
func writeError(w http.ResponseWriter, err error) {
	var (
		ve  *gateway.ValidationError
		nf  *gateway.NotFoundError
		agg *gateway.AggregateFailureError
		ge  *gateway.GatewayError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Code: "VALIDATION_ERROR", Details: ve.Details})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error(), Code: "NOT_FOUND"})
	case errors.As(err, &agg):
		resp := errorResponse{Error: agg.Error(), Code: "ALL_GATEWAYS_FAILED"}
		for _, a := range agg.Attempts {
			view := attemptView{Gateway: a.Gateway, DurationMs: a.Duration.Milliseconds()}
			if a.Err != nil {
				view.Error = a.Err.Error()
			}
			resp.Attempts = append(resp.Attempts, view)
		}
		writeJSON(w, http.StatusBadGateway, resp)
	case errors.As(err, &ge):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: ge.Error(), Code: ge.Code})
	case errors.Is(err, monitoring.ErrAlertNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, monitoring.ErrInvalidPeriod):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "VALIDATION_ERROR"})
}
