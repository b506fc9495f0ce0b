package domain

import (
	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateTypeCalendarEvent = "calendar_event"

// CalendarEventCreated is raised when a new event (or exception instance)
// is persisted for the first time.
type CalendarEventCreated struct {
	sharedDomain.BaseEvent
	EventUID   uuid.UUID
	CalendarID uuid.UUID
}

// NewCalendarEventCreated builds a CalendarEventCreated event.
func NewCalendarEventCreated(eventUID, calendarID uuid.UUID) CalendarEventCreated {
	return CalendarEventCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(eventUID, aggregateTypeCalendarEvent, "calendar.event.created"),
		EventUID:   eventUID,
		CalendarID: calendarID,
	}
}

// CalendarEventRescheduled is raised whenever start time, duration,
// recurrence, exdates, or reminders change — the set of mutations the
// reminder pipeline and outbound sync must react to.
type CalendarEventRescheduled struct {
	sharedDomain.BaseEvent
	EventUID        uuid.UUID
	CalendarID      uuid.UUID
	ReminderVersion int64
}

// NewCalendarEventRescheduled builds a CalendarEventRescheduled event.
func NewCalendarEventRescheduled(eventUID, calendarID uuid.UUID, reminderVersion int64) CalendarEventRescheduled {
	return CalendarEventRescheduled{
		BaseEvent:       sharedDomain.NewBaseEvent(eventUID, aggregateTypeCalendarEvent, "calendar.event.rescheduled"),
		EventUID:        eventUID,
		CalendarID:      calendarID,
		ReminderVersion: reminderVersion,
	}
}

// CalendarEventDeleted is raised when an event is removed, so the reminder
// pipeline and outbound sync can drop their derived state.
type CalendarEventDeleted struct {
	sharedDomain.BaseEvent
	EventUID   uuid.UUID
	CalendarID uuid.UUID
}

// NewCalendarEventDeleted builds a CalendarEventDeleted event.
func NewCalendarEventDeleted(eventUID, calendarID uuid.UUID) CalendarEventDeleted {
	return CalendarEventDeleted{
		BaseEvent:  sharedDomain.NewBaseEvent(eventUID, aggregateTypeCalendarEvent, "calendar.event.deleted"),
		EventUID:   eventUID,
		CalendarID: calendarID,
	}
}
