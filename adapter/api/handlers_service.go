package api

import (
	"net/http"

	bookingApp "github.com/nitro-scheduler/nitro/internal/booking/application"
	bookingDomain "github.com/nitro-scheduler/nitro/internal/booking/domain"
)

type createServiceRequest struct {
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *handlers) createService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	service, err := h.c.ServiceHandler.HandleCreate(r.Context(), bookingApp.CreateServiceCommand{
		AccountID: mustAccountID(r),
		Name:      req.Name,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newServiceDTO(service))
}

type addServiceMemberRequest struct {
	UserID            string                     `json:"user_id"`
	Availability      bookingDomain.Availability `json:"availability"`
	BufferBeforeMs    int64                      `json:"buffer_before_ms"`
	BufferAfterMs     int64                      `json:"buffer_after_ms"`
	ClosestBookingMs  int64                      `json:"closest_booking_ms"`
	FurthestBookingMs *int64                     `json:"furthest_booking_ms,omitempty"`
}

func (h *handlers) addServiceMember(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addServiceMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := h.c.ServiceHandler.HandleAddMember(r.Context(), bookingApp.AddMemberCommand{
		ServiceID:         serviceID,
		UserID:            userID,
		Availability:      req.Availability,
		BufferBeforeMs:    req.BufferBeforeMs,
		BufferAfterMs:     req.BufferAfterMs,
		ClosestBookingMs:  req.ClosestBookingMs,
		FurthestBookingMs: req.FurthestBookingMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newServiceResourceDTO(resource))
}

type attachBusyCalendarRequest struct {
	UserID           string `json:"user_id"`
	SyncedCalendarID string `json:"synced_calendar_id"`
}

func (h *handlers) attachServiceBusyCalendar(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req attachBusyCalendarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	syncedCalendarID, err := parseUUID(req.SyncedCalendarID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.c.ServiceHandler.HandleAttachBusyCalendar(r.Context(), bookingApp.AttachBusyCalendarCommand{
		ServiceID:        serviceID,
		UserID:           userID,
		SyncedCalendarID: syncedCalendarID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
