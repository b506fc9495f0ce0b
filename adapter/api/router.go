package api

import (
	"log/slog"
	"net/http"

	"github.com/nitro-scheduler/nitro/internal/app"
)

// NewRouter builds the HTTP mux for the scheduling backend, wiring every
// bounded context's command/query handlers from container behind a
// correlation-ID / logging / recovery / API-key-auth middleware chain.
// Health and readiness are served unauthenticated, matching the
// teacher's own worker health endpoints.
func NewRouter(container *app.Container) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{c: container}

	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)

	mux.HandleFunc("POST /v1/accounts", h.createAccount)

	mux.HandleFunc("POST /v1/calendars", h.createCalendar)
	mux.HandleFunc("DELETE /v1/calendars/{id}", h.deleteCalendar)
	mux.HandleFunc("GET /v1/calendars/{id}/events", h.listEventsInWindow)
	mux.HandleFunc("POST /v1/events", h.createEvent)
	mux.HandleFunc("POST /v1/events/{id}/reschedule", h.rescheduleEvent)
	mux.HandleFunc("DELETE /v1/events/{id}", h.deleteEvent)
	mux.HandleFunc("GET /v1/events/{id}/instances", h.getEventInstances)
	mux.HandleFunc("POST /v1/events/search", h.searchEvents)

	mux.HandleFunc("POST /v1/schedules", h.createSchedule)
	mux.HandleFunc("PUT /v1/schedules/{id}/rules", h.updateScheduleRules)
	mux.HandleFunc("PUT /v1/schedules/{id}/timezone", h.updateScheduleTimezone)
	mux.HandleFunc("DELETE /v1/schedules/{id}", h.deleteSchedule)

	mux.HandleFunc("GET /v1/freebusy", h.getUserFreeBusy)
	mux.HandleFunc("POST /v1/freebusy/multi", h.getMultiUserFreeBusy)

	mux.HandleFunc("POST /v1/services", h.createService)
	mux.HandleFunc("POST /v1/services/{id}/members", h.addServiceMember)
	mux.HandleFunc("POST /v1/services/{id}/busy-calendars", h.attachServiceBusyCalendar)
	mux.HandleFunc("GET /v1/services/{id}/slots", h.getSlots)
	mux.HandleFunc("POST /v1/bookings", h.createBooking)
	mux.HandleFunc("POST /v1/bookings/{id}/cancel", h.cancelBooking)

	var handler http.Handler = mux
	handler = withRequireAPIKeyExceptHealth(container, handler)
	handler = withRecover(handler)
	handler = withRequestLog(handler)
	handler = withCorrelationID(loggerOrDefault(container.Logger))(handler)
	return handler
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// withRequireAPIKeyExceptHealth gates every route behind the admin API key
// except the unauthenticated liveness/readiness probes and account
// bootstrap (POST /v1/accounts).
func withRequireAPIKeyExceptHealth(container *app.Container, next http.Handler) http.Handler {
	auth := requireAPIKey(container.APIKeyResolver)
	authed := auth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/healthz", r.URL.Path == "/readyz":
			next.ServeHTTP(w, r)
		case r.URL.Path == "/v1/accounts" && r.Method == http.MethodPost:
			// Bootstrapping the first account is gated by
			// CreateAccountCommand's own secret code, not an API key
			// that does not exist yet.
			next.ServeHTTP(w, r)
		default:
			authed.ServeHTTP(w, r)
		}
	})
}
