package application

import (
	"context"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/calendar/recurrence"
	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/google/uuid"
)

// EventInstanceDTO is one expanded occurrence of an event (recurring or not).
type EventInstanceDTO struct {
	Event       *domain.CalendarEvent
	StartTimeMs int64
	EndTimeMs   int64
}

// ListEventsInWindowQuery lists every event in a calendar overlapping a
// window, with recurring events expanded into their occurrences.
type ListEventsInWindowQuery struct {
	CalendarID uuid.UUID
	StartMs    int64
	EndMs      int64
}

func (ListEventsInWindowQuery) QueryName() string { return "calendar.list_events_in_window" }

// ListEventsInWindowHandler handles ListEventsInWindowQuery.
type ListEventsInWindowHandler struct {
	events    domain.CalendarEventRepository
	calendars domain.CalendarRepository
}

// NewListEventsInWindowHandler creates a ListEventsInWindowHandler.
func NewListEventsInWindowHandler(events domain.CalendarEventRepository, calendars domain.CalendarRepository) *ListEventsInWindowHandler {
	return &ListEventsInWindowHandler{events: events, calendars: calendars}
}

// Handle fetches events in the calendar whose expansion window overlaps
// [StartMs, EndMs), expanding recurring events, dropping the occurrences
// that exception events override, and listing the exception events as
// instances of their own.
func (h *ListEventsInWindowHandler) Handle(ctx context.Context, q ListEventsInWindowQuery) ([]EventInstanceDTO, error) {
	window, err := timeline.FromMillis(q.StartMs, q.EndMs)
	if err != nil {
		return nil, err
	}
	if window.GreaterThan(timeline.MaxEventQuerySpanMs) {
		return nil, timeline.ErrInvalidTimeSpan
	}

	cal, err := h.calendars.FindByID(ctx, q.CalendarID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotFound
	}

	events, err := h.events.FindByCalendarWindow(ctx, q.CalendarID, q.StartMs, q.EndMs)
	if err != nil {
		return nil, err
	}

	exceptions := recurrence.BuildExceptionMap(events)

	var out []EventInstanceDTO
	for _, event := range events {
		if event.IsException() {
			out = append(out, EventInstanceDTO{
				Event:       event,
				StartTimeMs: event.StartTimeMs(),
				EndTimeMs:   event.StartTimeMs() + event.DurationMs(),
			})
			continue
		}
		if !event.IsRecurring() {
			span := timeline.Instance{StartMs: event.StartTimeMs(), EndMs: event.StartTimeMs() + event.DurationMs()}
			if span.Span().Overlaps(window) {
				out = append(out, EventInstanceDTO{Event: event, StartTimeMs: span.StartMs, EndTimeMs: span.EndMs})
			}
			continue
		}

		instances, err := recurrence.ExpandAndRemoveExceptions(event, window, cal.Settings(), exceptions)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			out = append(out, EventInstanceDTO{Event: event, StartTimeMs: inst.StartMs, EndTimeMs: inst.EndMs})
		}
	}

	return out, nil
}

// GetEventInstancesQuery expands a single event's recurrence within a window.
type GetEventInstancesQuery struct {
	EventID uuid.UUID
	StartMs int64
	EndMs   int64
}

func (GetEventInstancesQuery) QueryName() string { return "calendar.get_event_instances" }

// GetEventInstancesHandler handles GetEventInstancesQuery.
type GetEventInstancesHandler struct {
	events    domain.CalendarEventRepository
	calendars domain.CalendarRepository
}

// NewGetEventInstancesHandler creates a GetEventInstancesHandler.
func NewGetEventInstancesHandler(events domain.CalendarEventRepository, calendars domain.CalendarRepository) *GetEventInstancesHandler {
	return &GetEventInstancesHandler{events: events, calendars: calendars}
}

// Handle expands the named event's instances within the window. A
// non-recurring event yields at most one instance.
func (h *GetEventInstancesHandler) Handle(ctx context.Context, q GetEventInstancesQuery) ([]timeline.Instance, error) {
	event, err := h.events.FindByID(ctx, q.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrCalendarNotFound
	}

	window, err := timeline.FromMillis(q.StartMs, q.EndMs)
	if err != nil {
		return nil, err
	}
	if window.GreaterThan(timeline.MaxEventQuerySpanMs) {
		return nil, timeline.ErrInvalidTimeSpan
	}

	if !event.IsRecurring() {
		inst := timeline.Instance{StartMs: event.StartTimeMs(), EndMs: event.StartTimeMs() + event.DurationMs(), Busy: event.Busy()}
		if inst.Span().Overlaps(window) {
			return []timeline.Instance{inst}, nil
		}
		return nil, nil
	}

	cal, err := h.calendars.FindByID(ctx, event.CalendarID())
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotFound
	}

	exceptions, err := h.events.FindExceptionsByParent(ctx, event.ID())
	if err != nil {
		return nil, err
	}
	exceptionMap := recurrence.BuildExceptionMap(exceptions)
	return recurrence.ExpandAndRemoveExceptions(event, window, cal.Settings(), exceptionMap)
}

// SearchEventsQuery runs the search DSL against calendar events.
type SearchEventsQuery struct {
	Filter domain.EventFilter
}

func (SearchEventsQuery) QueryName() string { return "calendar.search_events" }

// SearchEventsHandler handles SearchEventsQuery.
type SearchEventsHandler struct {
	events         domain.CalendarEventRepository
	maxResultCount int
}

// NewSearchEventsHandler creates a SearchEventsHandler, capping result
// counts at maxResultCount when the request specifies none or a larger one.
func NewSearchEventsHandler(events domain.CalendarEventRepository, maxResultCount int) *SearchEventsHandler {
	return &SearchEventsHandler{events: events, maxResultCount: maxResultCount}
}

// Handle runs the filter, clamping the limit to the server-configured maximum.
func (h *SearchEventsHandler) Handle(ctx context.Context, q SearchEventsQuery) ([]*domain.CalendarEvent, error) {
	filter := q.Filter
	if filter.Limit <= 0 || filter.Limit > h.maxResultCount {
		filter.Limit = h.maxResultCount
	}
	return h.events.Search(ctx, filter)
}
