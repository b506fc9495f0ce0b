package api

import (
	"net/http"

	calendarApp "github.com/nitro-scheduler/nitro/internal/calendar/application"
	calendarDomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
)

type createCalendarRequest struct {
	UserID   string                          `json:"user_id"`
	Name     string                          `json:"name"`
	Key      string                          `json:"key"`
	Settings calendarDomain.CalendarSettings `json:"settings"`
	Metadata map[string]string               `json:"metadata,omitempty"`
}

func (h *handlers) createCalendar(w http.ResponseWriter, r *http.Request) {
	var req createCalendarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cal, err := h.c.CreateCalendarHandler.Handle(r.Context(), calendarApp.CreateCalendarCommand{
		AccountID: mustAccountID(r),
		UserID:    userID,
		Name:      req.Name,
		Key:       req.Key,
		Settings:  req.Settings,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCalendarDTO(cal))
}

func (h *handlers) deleteCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.c.DeleteCalendarHandler.Handle(r.Context(), calendarApp.DeleteCalendarCommand{CalendarID: id}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createEventRequest struct {
	UserID              string                        `json:"user_id"`
	CalendarID          string                        `json:"calendar_id"`
	Title               string                        `json:"title"`
	Description         string                        `json:"description"`
	Status              calendarDomain.EventStatus    `json:"status"`
	Busy                bool                          `json:"busy"`
	StartTimeMs         int64                         `json:"start_time_ms"`
	DurationMs          int64                         `json:"duration_ms"`
	AllDay              bool                          `json:"all_day"`
	Recurrence          *calendarDomain.RecurrenceRule `json:"recurrence,omitempty"`
	ExdatesMs           []int64                       `json:"exdates_ms,omitempty"`
	Reminders           []calendarDomain.ReminderOffset `json:"reminders,omitempty"`
	EventType           string                        `json:"event_type"`
	Metadata            map[string]string             `json:"metadata,omitempty"`
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	calendarID, err := parseUUID(req.CalendarID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.c.CreateEventHandler.Handle(r.Context(), calendarApp.CreateEventCommand{
		UserID: userID,
		Params: calendarDomain.NewCalendarEventParams{
			AccountID:   mustAccountID(r),
			CalendarID:  calendarID,
			UserID:      userID,
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Busy:        req.Busy,
			StartTimeMs: req.StartTimeMs,
			DurationMs:  req.DurationMs,
			AllDay:      req.AllDay,
			Recurrence:  req.Recurrence,
			ExdatesMs:   req.ExdatesMs,
			Reminders:   req.Reminders,
			EventType:   req.EventType,
			Metadata:    req.Metadata,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventDTO(event))
}

type rescheduleEventRequest struct {
	StartTimeMs int64 `json:"start_time_ms"`
	DurationMs  int64 `json:"duration_ms"`
}

func (h *handlers) rescheduleEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rescheduleEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err = h.c.RescheduleEventHandler.Handle(r.Context(), calendarApp.RescheduleEventCommand{
		UserID:      mustAccountID(r),
		EventID:     id,
		StartTimeMs: req.StartTimeMs,
		DurationMs:  req.DurationMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.c.DeleteEventHandler.Handle(r.Context(), calendarApp.DeleteEventCommand{UserID: mustAccountID(r), EventID: id}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listEventsInWindow(w http.ResponseWriter, r *http.Request) {
	calendarID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	startMs, err := queryInt64(r, "start_ms", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	endMs, err := queryInt64(r, "end_ms", true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.c.ListEventsInWindowHandler.Handle(r.Context(), calendarApp.ListEventsInWindowQuery{
		CalendarID: calendarID,
		StartMs:    startMs,
		EndMs:      endMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]eventInstanceDTO, len(out))
	for i, inst := range out {
		dtos[i] = eventInstanceDTO{Event: newEventDTO(inst.Event), StartTimeMs: inst.StartTimeMs, EndTimeMs: inst.EndTimeMs}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *handlers) getEventInstances(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	startMs, err := queryInt64(r, "start_ms", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	endMs, err := queryInt64(r, "end_ms", true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.c.GetEventInstancesHandler.Handle(r.Context(), calendarApp.GetEventInstancesQuery{
		EventID: eventID,
		StartMs: startMs,
		EndMs:   endMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) searchEvents(w http.ResponseWriter, r *http.Request) {
	var filter calendarDomain.EventFilter
	if err := decodeJSON(r, &filter); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.c.SearchEventsHandler.Handle(r.Context(), calendarApp.SearchEventsQuery{Filter: filter})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventDTOs(out))
}
