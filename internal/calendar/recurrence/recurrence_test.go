package recurrence_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/calendar/recurrence"
	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeeklyEvent(t *testing.T, start time.Time) *domain.CalendarEvent {
	t.Helper()
	event, err := domain.NewCalendarEvent(domain.NewCalendarEventParams{
		AccountID:   uuid.New(),
		CalendarID:  uuid.New(),
		UserID:      uuid.New(),
		Status:      domain.StatusConfirmed,
		Busy:        true,
		StartTimeMs: start.UnixMilli(),
		DurationMs:  int64(30 * time.Minute / time.Millisecond),
		Recurrence: &domain.RecurrenceRule{
			Freq:     domain.FreqWeekly,
			Interval: 1,
			Count:    5,
		},
	})
	require.NoError(t, err)
	return event
}

func utcMondaySettings() domain.CalendarSettings {
	return domain.CalendarSettings{Timezone: "UTC", WeekStart: time.Monday}
}

func TestExpand_WeeklyCount(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) // Monday
	event := newWeeklyEvent(t, start)

	window, err := timeline.NewTimeSpan(start, start.AddDate(0, 0, 60))
	require.NoError(t, err)

	instances, err := recurrence.Expand(event, window, utcMondaySettings())
	require.NoError(t, err)
	require.Len(t, instances, 5)

	for i, inst := range instances {
		expectedStart := start.AddDate(0, 0, 7*i)
		assert.Equal(t, expectedStart.UnixMilli(), inst.StartMs)
		assert.True(t, inst.Busy)
	}
}

func TestExpand_RespectsExdates(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	event := newWeeklyEvent(t, start)
	event.ApplyRecurrenceChange(event.Recurrence(), []int64{start.AddDate(0, 0, 7).UnixMilli()})

	window, err := timeline.NewTimeSpan(start, start.AddDate(0, 0, 60))
	require.NoError(t, err)

	// Expand filters exdates itself; ExpandAndRemoveExceptions is not
	// needed for them.
	instances, err := recurrence.Expand(event, window, utcMondaySettings())
	require.NoError(t, err)
	require.Len(t, instances, 4, "the second occurrence is excluded by exdates")
}

func TestExpand_MissingRecurrence(t *testing.T) {
	event, err := domain.NewCalendarEvent(domain.NewCalendarEventParams{
		AccountID:   uuid.New(),
		CalendarID:  uuid.New(),
		UserID:      uuid.New(),
		StartTimeMs: time.Now().UnixMilli(),
		DurationMs:  1000,
	})
	require.NoError(t, err)

	window, err := timeline.FromMillis(0, 1000)
	require.NoError(t, err)

	_, err = recurrence.Expand(event, window, recurrence.DefaultSettings)
	assert.ErrorIs(t, err, recurrence.ErrMissingRecurrence)
}

func TestExpand_SundayWeekStartKeepsWeekday(t *testing.T) {
	// A weekly rule anchored on a Friday still lands on Fridays under a
	// Sunday week start; Wkst only changes which day a week "begins" on for
	// interval math, so assert the instance count and weekday.
	start := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC) // Friday
	event, err := domain.NewCalendarEvent(domain.NewCalendarEventParams{
		AccountID:   uuid.New(),
		CalendarID:  uuid.New(),
		UserID:      uuid.New(),
		StartTimeMs: start.UnixMilli(),
		DurationMs:  int64(30 * time.Minute / time.Millisecond),
		Recurrence: &domain.RecurrenceRule{
			Freq:     domain.FreqWeekly,
			Interval: 1,
			Count:    3,
		},
	})
	require.NoError(t, err)

	window, err := timeline.NewTimeSpan(start, start.AddDate(0, 0, 30))
	require.NoError(t, err)

	sundaySettings := domain.CalendarSettings{Timezone: "UTC", WeekStart: time.Sunday}
	instances, err := recurrence.Expand(event, window, sundaySettings)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	for _, inst := range instances {
		assert.Equal(t, time.Friday, time.UnixMilli(inst.StartMs).UTC().Weekday())
	}
}

func TestValidateRule_RejectsExcessiveCount(t *testing.T) {
	err := recurrence.ValidateRule(&domain.RecurrenceRule{Freq: domain.FreqDaily, Count: recurrence.MaxCount + 1}, time.Now())
	assert.ErrorIs(t, err, recurrence.ErrInvalidRecurrenceRule)
}

func TestBuildExceptionMap(t *testing.T) {
	parent := newWeeklyEvent(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	originalStart := parent.StartTimeMs() + int64(7*24*time.Hour/time.Millisecond)

	exception, err := domain.NewCalendarEvent(domain.NewCalendarEventParams{
		AccountID:           parent.AccountID(),
		CalendarID:          parent.CalendarID(),
		UserID:              parent.UserID(),
		StartTimeMs:         originalStart + int64(time.Hour/time.Millisecond),
		DurationMs:          parent.DurationMs(),
		RecurringEventID:    idPtr(parent.ID()),
		OriginalStartTimeMs: &originalStart,
	})
	require.NoError(t, err)

	m := recurrence.BuildExceptionMap([]*domain.CalendarEvent{parent, exception})
	require.Contains(t, m, parent.ID().String())
	assert.Contains(t, m[parent.ID().String()], originalStart)
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }
