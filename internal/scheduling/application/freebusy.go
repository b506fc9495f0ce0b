package application

import (
	"context"

	calendardomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/calendar/recurrence"
	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/google/uuid"
)

// calendarBusySource adapts CalendarEventRepository to timeline.CalendarSource
// for the freebusy endpoints, expanding recurring events the same way the
// booking solver does.
type calendarBusySource struct {
	events    calendardomain.CalendarEventRepository
	calendars calendardomain.CalendarRepository
}

func (s *calendarBusySource) BusyInstances(ctx context.Context, calendarID string, window timeline.TimeSpan) ([]timeline.Instance, error) {
	id, err := uuid.Parse(calendarID)
	if err != nil {
		return nil, err
	}

	cal, err := s.calendars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	settings := recurrence.DefaultSettings
	if cal != nil {
		settings = cal.Settings()
	}

	events, err := s.events.FindByCalendarWindow(ctx, id, window.StartMs, window.EndMs)
	if err != nil {
		return nil, err
	}

	var parents []*calendardomain.CalendarEvent
	for _, e := range events {
		if !e.IsException() {
			parents = append(parents, e)
		}
	}
	exceptions := recurrence.BuildExceptionMap(events)

	var out []timeline.Instance
	for _, e := range parents {
		if !e.Busy() {
			continue
		}
		if !e.IsRecurring() {
			inst := timeline.Instance{StartMs: e.StartTimeMs(), EndMs: e.StartTimeMs() + e.DurationMs(), Busy: e.Busy()}
			if inst.Span().Overlaps(window) {
				out = append(out, inst)
			}
			continue
		}
		instances, err := recurrence.ExpandAndRemoveExceptions(e, window, settings, exceptions)
		if err != nil {
			return nil, err
		}
		out = append(out, instances...)
	}
	return out, nil
}

// GetUserFreeBusyQuery asks for one user's busy/free timeline across their
// calendars within a window.
type GetUserFreeBusyQuery struct {
	UserID      uuid.UUID
	CalendarIDs []uuid.UUID
	StartMs     int64
	EndMs       int64
}

func (GetUserFreeBusyQuery) QueryName() string { return "scheduling.get_user_freebusy" }

// GetMultiUserFreeBusyQuery asks for several users' timelines in one pass.
type GetMultiUserFreeBusyQuery struct {
	CalendarIDsByUser map[uuid.UUID][]uuid.UUID
	StartMs           int64
	EndMs             int64
}

func (GetMultiUserFreeBusyQuery) QueryName() string { return "scheduling.get_multi_user_freebusy" }

// FreeBusyHandler serves both the single- and multi-user freebusy queries.
type FreeBusyHandler struct {
	source *calendarBusySource
}

// NewFreeBusyHandler creates a FreeBusyHandler.
func NewFreeBusyHandler(events calendardomain.CalendarEventRepository, calendars calendardomain.CalendarRepository) *FreeBusyHandler {
	return &FreeBusyHandler{source: &calendarBusySource{events: events, calendars: calendars}}
}

// Handle computes one user's merged busy/free timeline.
func (h *FreeBusyHandler) Handle(ctx context.Context, q GetUserFreeBusyQuery) (timeline.UserTimeline, error) {
	window, err := timeline.FromMillis(q.StartMs, q.EndMs)
	if err != nil {
		return timeline.UserTimeline{}, err
	}
	if window.GreaterThan(timeline.MaxEventQuerySpanMs) {
		return timeline.UserTimeline{}, timeline.ErrInvalidTimeSpan
	}
	calendarIDs := make([]string, len(q.CalendarIDs))
	for i, id := range q.CalendarIDs {
		calendarIDs[i] = id.String()
	}
	return timeline.AggregateUser(ctx, q.UserID.String(), window, calendarIDs, h.source, nil, nil)
}

// HandleMultiUser computes each listed user's timeline independently.
func (h *FreeBusyHandler) HandleMultiUser(ctx context.Context, q GetMultiUserFreeBusyQuery) (map[string]timeline.UserTimeline, error) {
	window, err := timeline.FromMillis(q.StartMs, q.EndMs)
	if err != nil {
		return nil, err
	}
	if window.GreaterThan(timeline.MaxEventQuerySpanMs) {
		return nil, timeline.ErrInvalidTimeSpan
	}

	userIDs := make([]string, 0, len(q.CalendarIDsByUser))
	calendarsByUser := make(map[string][]string, len(q.CalendarIDsByUser))
	for userID, calendarIDs := range q.CalendarIDsByUser {
		userIDs = append(userIDs, userID.String())
		ids := make([]string, len(calendarIDs))
		for i, id := range calendarIDs {
			ids[i] = id.String()
		}
		calendarsByUser[userID.String()] = ids
	}

	return timeline.AggregateMultiUser(ctx, userIDs, window, calendarsByUser, h.source)
}
