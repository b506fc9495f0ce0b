package application

import (
	"context"
	"time"

	calendardomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/calendar/recurrence"
	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	schedulingdomain "github.com/nitro-scheduler/nitro/internal/scheduling/domain"
	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/google/uuid"
)

// GetSlotsQuery asks the solver for a service's bookable slots on one local date.
type GetSlotsQuery struct {
	ServiceID uuid.UUID
	Date      string
	Timezone  string
	DurationMs int64
	IntervalMs int64
}

func (GetSlotsQuery) QueryName() string { return "booking.get_slots" }

// GetSlotsHandler assembles each member's timelines and runs the solver.
type GetSlotsHandler struct {
	services     domain.ServiceRepository
	resources    domain.ServiceResourceRepository
	busyLinks    domain.BusyCalendarLinkRepository
	schedules    schedulingdomain.ScheduleRepository
	calEvents    calendardomain.CalendarEventRepository
	calendars    calendardomain.CalendarRepository
	syncedEvents calendardomain.SyncedCalendarEventRepository
}

// NewGetSlotsHandler creates a GetSlotsHandler.
func NewGetSlotsHandler(services domain.ServiceRepository, resources domain.ServiceResourceRepository, busyLinks domain.BusyCalendarLinkRepository, schedules schedulingdomain.ScheduleRepository, calEvents calendardomain.CalendarEventRepository, calendars calendardomain.CalendarRepository, syncedEvents calendardomain.SyncedCalendarEventRepository) *GetSlotsHandler {
	return &GetSlotsHandler{services: services, resources: resources, busyLinks: busyLinks, schedules: schedules, calEvents: calEvents, calendars: calendars, syncedEvents: syncedEvents}
}

// Handle computes slot availability end to end: compute the clamped window, build each
// member's effective-free timeline, then grid-sample candidate slots.
func (h *GetSlotsHandler) Handle(ctx context.Context, q GetSlotsQuery) ([]SlotsByDate, error) {
	service, err := h.services.FindByID(ctx, q.ServiceID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}

	members, err := h.resources.ListByService(ctx, q.ServiceID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	closest := make([]int64, len(members))
	furthest := make([]*int64, len(members))
	for i, m := range members {
		closest[i] = m.ClosestBookingMs()
		furthest[i] = m.FurthestBookingMs()
	}

	window, err := ComputeWindow(q.Date, q.Timezone, time.Now(), closest, furthest)
	if err != nil {
		return nil, err
	}

	participants := make([]ParticipantTimelines, 0, len(members))
	for _, m := range members {
		avail, err := h.buildAvailability(ctx, m, window)
		if err != nil {
			return nil, err
		}
		busy, err := h.buildBufferedBusy(ctx, service, m, window)
		if err != nil {
			return nil, err
		}
		participants = append(participants, ParticipantTimelines{
			UserID:       m.UserID(),
			Availability: avail,
			BufferedBusy: busy,
		})
	}

	return SolveSlots(window, q.DurationMs, q.IntervalMs, q.Timezone, participants)
}

func (h *GetSlotsHandler) buildAvailability(ctx context.Context, m *domain.ServiceResource, window timeline.TimeSpan) ([]timeline.Instance, error) {
	avail := m.Availability()
	var schedule *schedulingdomain.Schedule
	if avail.Kind == domain.AvailabilitySchedule {
		s, err := h.schedules.FindByID(ctx, avail.ResourceID)
		if err != nil {
			return nil, err
		}
		schedule = s
	}

	calendarFree := func() ([]timeline.Instance, error) {
		return h.busyInstancesForCalendar(ctx, avail.ResourceID, window, 0, 0)
	}
	instances, err := BuildAvailabilityTimeline(avail, window, calendarFree, schedule)
	if err != nil {
		return nil, err
	}
	if avail.Kind == domain.AvailabilityCalendar {
		// Calendar availability is the time the calendar's busy events leave
		// open; complement the busy instances to get free time.
		return timeline.Complement(timeline.CompatibleMerge(instances), window), nil
	}
	return instances, nil
}

func (h *GetSlotsHandler) buildBufferedBusy(ctx context.Context, service *domain.Service, m *domain.ServiceResource, window timeline.TimeSpan) ([]timeline.Instance, error) {
	var busy []timeline.Instance

	owned, err := h.busyInstancesForCalendar(ctx, m.UserID(), window, m.BufferBeforeMs(), m.BufferAfterMs())
	if err != nil {
		return nil, err
	}
	busy = append(busy, owned...)

	links, err := h.busyLinks.ListByServiceAndUser(ctx, service.ID(), m.UserID())
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		extra, err := h.busyInstancesForCalendar(ctx, link.SyncedCalendarID(), window, m.BufferBeforeMs(), m.BufferAfterMs())
		if err != nil {
			return nil, err
		}
		busy = append(busy, extra...)
	}

	return busy, nil
}

// busyInstancesForCalendar expands a calendar's events (recurring and
// single) into busy instances over the window, applying buffers.
func (h *GetSlotsHandler) busyInstancesForCalendar(ctx context.Context, calendarID uuid.UUID, window timeline.TimeSpan, bufferBeforeMs, bufferAfterMs int64) ([]timeline.Instance, error) {
	events, err := h.calEvents.FindByCalendarWindow(ctx, calendarID, window.StartMs, window.EndMs)
	if err != nil {
		return nil, err
	}

	settings := recurrence.DefaultSettings
	if cal, err := h.calendars.FindByID(ctx, calendarID); err != nil {
		return nil, err
	} else if cal != nil {
		settings = cal.Settings()
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
				out = append(out, timeline.ExpandBuffer(inst, bufferBeforeMs, bufferAfterMs))
			}
			continue
		}
		instances, err := recurrence.ExpandAndRemoveExceptions(e, window, settings, exceptions)
		if err != nil {
			return nil, err
		}
		for _, i := range instances {
			out = append(out, timeline.ExpandBuffer(i, bufferBeforeMs, bufferAfterMs))
		}
	}
	return out, nil
}
