package api

import (
	"net/http"

	bookingApp "github.com/nitro-scheduler/nitro/internal/booking/application"
)

func (h *handlers) getSlots(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	durationMs, err := queryInt64(r, "duration_ms", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	intervalMs, err := queryInt64(r, "interval_ms", true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.c.GetSlotsHandler.Handle(r.Context(), bookingApp.GetSlotsQuery{
		ServiceID:  serviceID,
		Date:       q.Get("date"),
		Timezone:   q.Get("timezone"),
		DurationMs: durationMs,
		IntervalMs: intervalMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type createBookingRequest struct {
	ServiceID   string            `json:"service_id"`
	SlotStartMs int64             `json:"slot_start_ms"`
	DurationMs  int64             `json:"duration_ms"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	serviceID, err := parseUUID(req.ServiceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.c.CreateBookingHandler.Handle(r.Context(), bookingApp.CreateBookingCommand{
		ServiceID:   serviceID,
		SlotStartMs: req.SlotStartMs,
		DurationMs:  req.DurationMs,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type cancelBookingRequest struct {
	ServiceID   string `json:"service_id"`
	SlotStartMs int64  `json:"slot_start_ms"`
}

func (h *handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	serviceID, err := parseUUID(req.ServiceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.c.CancelBookingHandler.Handle(r.Context(), bookingApp.CancelBookingCommand{
		ServiceID:   serviceID,
		SlotStartMs: req.SlotStartMs,
		EventID:     eventID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
