package api

import (
	"net/http"

	"github.com/google/uuid"
	schedulingApp "github.com/nitro-scheduler/nitro/internal/scheduling/application"
	schedulingDomain "github.com/nitro-scheduler/nitro/internal/scheduling/domain"
)

type createScheduleRequest struct {
	UserID   string            `json:"user_id"`
	Timezone string            `json:"timezone"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *handlers) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	schedule, err := h.c.ScheduleHandler.HandleCreate(r.Context(), schedulingApp.CreateScheduleCommand{
		AccountID: mustAccountID(r),
		UserID:    userID,
		Timezone:  req.Timezone,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newScheduleDTO(schedule))
}

type updateScheduleRulesRequest struct {
	Rules []schedulingDomain.ScheduleRule `json:"rules"`
}

func (h *handlers) updateScheduleRules(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateScheduleRulesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err = h.c.ScheduleHandler.HandleUpdateRules(r.Context(), schedulingApp.UpdateScheduleRulesCommand{
		ScheduleID: id,
		Rules:      req.Rules,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateScheduleTimezoneRequest struct {
	Timezone string `json:"timezone"`
}

func (h *handlers) updateScheduleTimezone(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateScheduleTimezoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err = h.c.ScheduleHandler.HandleUpdateTimezone(r.Context(), schedulingApp.UpdateScheduleTimezoneCommand{
		ScheduleID: id,
		Timezone:   req.Timezone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.c.ScheduleHandler.HandleDelete(r.Context(), schedulingApp.DeleteScheduleCommand{ScheduleID: id}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getUserFreeBusy(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUID(r.URL.Query().Get("user_id"))
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

	var calendarIDs []uuid.UUID
	for _, raw := range r.URL.Query()["calendar_id"] {
		id, err := parseUUID(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		calendarIDs = append(calendarIDs, id)
	}

	out, err := h.c.FreeBusyHandler.Handle(r.Context(), schedulingApp.GetUserFreeBusyQuery{
		UserID:      userID,
		CalendarIDs: calendarIDs,
		StartMs:     startMs,
		EndMs:       endMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type multiUserFreeBusyRequest struct {
	CalendarIDsByUser map[string][]string `json:"calendar_ids_by_user"`
	StartMs           int64               `json:"start_ms"`
	EndMs             int64               `json:"end_ms"`
}

func (h *handlers) getMultiUserFreeBusy(w http.ResponseWriter, r *http.Request) {
	var req multiUserFreeBusyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	byUser := make(map[uuid.UUID][]uuid.UUID, len(req.CalendarIDsByUser))
	for rawUser, rawCalendars := range req.CalendarIDsByUser {
		userID, err := parseUUID(rawUser)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ids := make([]uuid.UUID, len(rawCalendars))
		for i, raw := range rawCalendars {
			id, err := parseUUID(raw)
			if err != nil {
				writeError(w, r, err)
				return
			}
			ids[i] = id
		}
		byUser[userID] = ids
	}

	out, err := h.c.FreeBusyHandler.HandleMultiUser(r.Context(), schedulingApp.GetMultiUserFreeBusyQuery{
		CalendarIDsByUser: byUser,
		StartMs:           req.StartMs,
		EndMs:             req.EndMs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
