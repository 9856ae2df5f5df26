package chi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
)

const defaultReportSpan = 24 * time.Hour

func getHealthStatus(monitor monitoring.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, monitor.GetHealthStatus())
	})
}

// getReport handles GET /v1/monitoring/report?from&to, RFC3339, last 24 hours by default
func getReport(monitor monitoring.UseCase, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		from, to, err := period(r, now())
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		report, err := monitor.GenerateReport(from, to)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})
}

// getEvents handles GET /v1/monitoring/events?from&to
func getEvents(monitor monitoring.UseCase, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		from, to, err := period(r, now())
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		events := monitor.Events(from, to)
		if events == nil {
			events = []gateway.OutcomeEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	})
}

func getAlerts(monitor monitoring.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		alerts := monitor.GetActiveAlerts()
		if alerts == nil {
			alerts = []monitoring.Alert{}
		}
		writeJSON(w, http.StatusOK, alerts)
	})
}

func resolveAlert(monitor monitoring.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := monitor.ResolveAlert(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	})
}

func period(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	from, to := now.Add(-defaultReportSpan), now
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from must be RFC3339: %w", err)
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to must be RFC3339: %w", err)
		}
		to = t
	}
	return from, to, nil
}
