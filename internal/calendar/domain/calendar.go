// Package domain holds the Calendar bounded context's aggregates:
// Calendar, CalendarEvent, EventGroup, SyncedCalendar and
// SyncedCalendarEvent.
package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	// ErrInvalidTimezone is returned when a calendar's timezone is not a
	// loadable IANA zone.
	ErrInvalidTimezone = errors.New("calendar: invalid IANA timezone")
	// ErrInvalidWeekStart is returned when a week-start weekday is out of range.
	ErrInvalidWeekStart = errors.New("calendar: invalid week start")
)

// CalendarSettings pins the timezone and week-start used to interpret a
// calendar's events, recurrence rules, and schedules.
type CalendarSettings struct {
	Timezone  string
	WeekStart time.Weekday
}

// Location loads the settings' IANA zone.
func (s CalendarSettings) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// ValidateCalendarSettings checks that the timezone is a loadable IANA zone
// and that the week start is a weekday.
func ValidateCalendarSettings(s CalendarSettings) error {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	if s.WeekStart < time.Sunday || s.WeekStart > time.Saturday {
		return ErrInvalidWeekStart
	}
	return nil
}

// Calendar is owned exclusively by a User; it carries the timezone and
// week-start that anchor recurrence expansion and scheduling for every
// event stored on it.
type Calendar struct {
	sharedDomain.BaseAggregateRoot
	accountID uuid.UUID
	userID    uuid.UUID
	name      string
	key       string
	settings  CalendarSettings
	metadata  map[string]string
}

// NewCalendar creates a calendar, validating its settings.
func NewCalendar(accountID, userID uuid.UUID, name, key string, settings CalendarSettings, metadata map[string]string) (*Calendar, error) {
	if err := ValidateCalendarSettings(settings); err != nil {
		return nil, err
	}
	return &Calendar{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		accountID:         accountID,
		userID:            userID,
		name:              name,
		key:               key,
		settings:          settings,
		metadata:          metadata,
	}, nil
}

// RehydrateCalendar recreates a calendar from persisted state.
func RehydrateCalendar(
	id, accountID, userID uuid.UUID,
	name, key string,
	settings CalendarSettings,
	metadata map[string]string,
	createdAt, updatedAt time.Time,
) *Calendar {
	return &Calendar{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), 0),
		accountID:         accountID,
		userID:            userID,
		name:              name,
		key:               key,
		settings:          settings,
		metadata:          metadata,
	}
}

func (c *Calendar) AccountID() uuid.UUID         { return c.accountID }
func (c *Calendar) UserID() uuid.UUID            { return c.userID }
func (c *Calendar) Name() string                 { return c.name }
func (c *Calendar) Key() string                  { return c.key }
func (c *Calendar) Settings() CalendarSettings    { return c.settings }
func (c *Calendar) Metadata() map[string]string  { return c.metadata }

// UpdateSettings changes the calendar's timezone/week-start, validating them.
func (c *Calendar) UpdateSettings(settings CalendarSettings) error {
	if err := ValidateCalendarSettings(settings); err != nil {
		return err
	}
	c.settings = settings
	c.Touch()
	return nil
}

// Rename updates the calendar's display name.
func (c *Calendar) Rename(name string) {
	c.name = name
	c.Touch()
}
