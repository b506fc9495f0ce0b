package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidDuration          = errors.New("event: duration must be positive")
	ErrExceptionFieldsMismatch  = errors.New("event: recurring_event_id and original_start_time must be set together")
	ErrExceptionCalendarMismatch = errors.New("event: exception instance must share its parent's calendar")
)

// Frequency is the recurrence base unit (RFC-5545-style).
type Frequency string

const (
	FreqYearly  Frequency = "YEARLY"
	FreqMonthly Frequency = "MONTHLY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqDaily   Frequency = "DAILY"
)

// WeekdayOccurrence is a plain weekday, or an "nth weekday of month" pair
// when N != 0 (e.g. the 2nd Tuesday when N=2, the last Friday when N=-1).
type WeekdayOccurrence struct {
	Weekday time.Weekday
	N       int
}

// RecurrenceRule is the stored recurrence descriptor for a CalendarEvent.
type RecurrenceRule struct {
	Freq        Frequency
	Interval    int
	Count       int        // 0 means unbounded by count
	Until       *time.Time // nil means unbounded by until
	ByWeekday   []WeekdayOccurrence
	ByMonthDay  []int
	BySetPos    []int
}

// ReminderOffset is one (delta, identifier) pair in an event's reminders list.
type ReminderOffset struct {
	DeltaMs    int64
	Identifier string
}

// EventStatus mirrors the status lifecycle of a calendar event.
type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusTentative EventStatus = "tentative"
	StatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is owned exclusively by a Calendar.
type CalendarEvent struct {
	sharedDomain.BaseAggregateRoot
	accountID          uuid.UUID
	calendarID         uuid.UUID
	userID             uuid.UUID
	title              string
	description        string
	status             EventStatus
	busy               bool
	startTimeMs        int64
	durationMs         int64
	allDay             bool
	recurrence         *RecurrenceRule
	exdatesMs          []int64
	recurringEventID   *uuid.UUID
	originalStartTimeMs *int64
	parentID           *uuid.UUID
	externalID         string
	reminders          []ReminderOffset
	serviceID          *uuid.UUID
	eventType          string
	metadata           map[string]string
	reminderVersion    int64
}

// NewCalendarEventParams bundles the fields needed to create a CalendarEvent.
type NewCalendarEventParams struct {
	AccountID           uuid.UUID
	CalendarID          uuid.UUID
	UserID              uuid.UUID
	Title               string
	Description         string
	Status              EventStatus
	Busy                bool
	StartTimeMs         int64
	DurationMs          int64
	AllDay              bool
	Recurrence          *RecurrenceRule
	ExdatesMs           []int64
	RecurringEventID    *uuid.UUID
	OriginalStartTimeMs *int64
	ParentID            *uuid.UUID
	ExternalID          string
	Reminders           []ReminderOffset
	ServiceID           *uuid.UUID
	EventType           string
	Metadata            map[string]string
}

// NewCalendarEvent creates a CalendarEvent, enforcing the invariants from
// the data model: duration must be positive, and recurring_event_id /
// original_start_time must be set together.
func NewCalendarEvent(p NewCalendarEventParams) (*CalendarEvent, error) {
	if p.DurationMs <= 0 {
		return nil, ErrInvalidDuration
	}
	if (p.RecurringEventID == nil) != (p.OriginalStartTimeMs == nil) {
		return nil, ErrExceptionFieldsMismatch
	}

	event := &CalendarEvent{
		BaseAggregateRoot:   sharedDomain.NewBaseAggregateRoot(),
		accountID:           p.AccountID,
		calendarID:          p.CalendarID,
		userID:              p.UserID,
		title:               p.Title,
		description:         p.Description,
		status:              p.Status,
		busy:                p.Busy,
		startTimeMs:         p.StartTimeMs,
		durationMs:          p.DurationMs,
		allDay:              p.AllDay,
		recurrence:          p.Recurrence,
		exdatesMs:           p.ExdatesMs,
		recurringEventID:    p.RecurringEventID,
		originalStartTimeMs: p.OriginalStartTimeMs,
		parentID:            p.ParentID,
		externalID:          p.ExternalID,
		reminders:           p.Reminders,
		serviceID:           p.ServiceID,
		eventType:           p.EventType,
		metadata:            p.Metadata,
	}
	event.AddDomainEvent(NewCalendarEventCreated(event.ID(), event.calendarID))
	return event, nil
}

// RehydrateCalendarEvent recreates an event from persisted state.
func RehydrateCalendarEvent(id uuid.UUID, p NewCalendarEventParams, reminderVersion int64, createdAt, updatedAt time.Time) *CalendarEvent {
	return &CalendarEvent{
		BaseAggregateRoot:   sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), 0),
		accountID:           p.AccountID,
		calendarID:          p.CalendarID,
		userID:              p.UserID,
		title:               p.Title,
		description:         p.Description,
		status:              p.Status,
		busy:                p.Busy,
		startTimeMs:         p.StartTimeMs,
		durationMs:          p.DurationMs,
		allDay:              p.AllDay,
		recurrence:          p.Recurrence,
		exdatesMs:           p.ExdatesMs,
		recurringEventID:    p.RecurringEventID,
		originalStartTimeMs: p.OriginalStartTimeMs,
		parentID:            p.ParentID,
		externalID:          p.ExternalID,
		reminders:           p.Reminders,
		serviceID:           p.ServiceID,
		eventType:           p.EventType,
		metadata:            p.Metadata,
		reminderVersion:     reminderVersion,
	}
}

func (e *CalendarEvent) AccountID() uuid.UUID             { return e.accountID }
func (e *CalendarEvent) CalendarID() uuid.UUID            { return e.calendarID }
func (e *CalendarEvent) UserID() uuid.UUID                { return e.userID }
func (e *CalendarEvent) Title() string                    { return e.title }
func (e *CalendarEvent) Description() string              { return e.description }
func (e *CalendarEvent) Status() EventStatus               { return e.status }
func (e *CalendarEvent) Busy() bool                        { return e.busy }
func (e *CalendarEvent) StartTimeMs() int64                { return e.startTimeMs }
func (e *CalendarEvent) DurationMs() int64                 { return e.durationMs }
func (e *CalendarEvent) AllDay() bool                       { return e.allDay }
func (e *CalendarEvent) Recurrence() *RecurrenceRule        { return e.recurrence }
func (e *CalendarEvent) ExdatesMs() []int64                 { return e.exdatesMs }
func (e *CalendarEvent) RecurringEventID() *uuid.UUID       { return e.recurringEventID }
func (e *CalendarEvent) OriginalStartTimeMs() *int64        { return e.originalStartTimeMs }
func (e *CalendarEvent) ParentID() *uuid.UUID               { return e.parentID }
func (e *CalendarEvent) ExternalID() string                 { return e.externalID }
func (e *CalendarEvent) Reminders() []ReminderOffset        { return e.reminders }
func (e *CalendarEvent) ServiceID() *uuid.UUID              { return e.serviceID }
func (e *CalendarEvent) EventType() string                  { return e.eventType }
func (e *CalendarEvent) Metadata() map[string]string        { return e.metadata }
func (e *CalendarEvent) ReminderVersion() int64             { return e.reminderVersion }
func (e *CalendarEvent) IsException() bool                  { return e.recurringEventID != nil }

// IsRecurring reports whether the event carries a recurrence rule.
func (e *CalendarEvent) IsRecurring() bool { return e.recurrence != nil }

// ApplyReschedule changes the event's start and duration; a change to
// either bumps the reminder version so any already-materialized reminder
// rows are superseded and re-expanded.
func (e *CalendarEvent) ApplyReschedule(startTimeMs, durationMs int64) error {
	if durationMs <= 0 {
		return ErrInvalidDuration
	}
	e.startTimeMs = startTimeMs
	e.durationMs = durationMs
	e.reminderVersion++
	e.Touch()
	e.AddDomainEvent(NewCalendarEventRescheduled(e.ID(), e.calendarID, e.reminderVersion))
	return nil
}

// ApplyRecurrenceChange replaces the recurrence rule and exception dates,
// bumping the reminder version per the versioning contract in section 4.8.
func (e *CalendarEvent) ApplyRecurrenceChange(rule *RecurrenceRule, exdatesMs []int64) {
	e.recurrence = rule
	e.exdatesMs = exdatesMs
	e.reminderVersion++
	e.Touch()
	e.AddDomainEvent(NewCalendarEventRescheduled(e.ID(), e.calendarID, e.reminderVersion))
}

// ApplyReminders replaces the reminders list, bumping the reminder version.
func (e *CalendarEvent) ApplyReminders(reminders []ReminderOffset) {
	e.reminders = reminders
	e.reminderVersion++
	e.Touch()
	e.AddDomainEvent(NewCalendarEventRescheduled(e.ID(), e.calendarID, e.reminderVersion))
}

// SetReminderVersion overwrites the reminder version without raising a
// domain event.
func (e *CalendarEvent) SetReminderVersion(v int64) { e.reminderVersion = v }

// UpdateFields applies non-version-bumping field edits (title, description,
// status, busy, metadata).
func (e *CalendarEvent) UpdateFields(title, description string, status EventStatus, busy bool, metadata map[string]string) {
	e.title = title
	e.description = description
	e.status = status
	e.busy = busy
	e.metadata = metadata
	e.Touch()
}

// ValidateExceptionAgainstParent enforces that an exception instance shares
// its parent's calendar.
func ValidateExceptionAgainstParent(exception, parent *CalendarEvent) error {
	if exception.calendarID != parent.calendarID {
		return ErrExceptionCalendarMismatch
	}
	return nil
}
