// Package application implements the reminder pipeline's two stages:
// periodic expansion of event reminders into materialized rows, and a
// per-minute dispatcher that atomically claims and delivers due rows.
package application

import (
	"context"
	"time"

	calendardomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/calendar/recurrence"
	"github.com/nitro-scheduler/nitro/internal/reminder/domain"
	"github.com/nitro-scheduler/nitro/internal/timeline"
)

// ExpansionPeriod is the expansion loop's tick interval; the expansion
// horizon and lookahead default to this period plus a slack window.
const ExpansionPeriod = 30 * time.Minute

const expansionSlack = 5 * time.Minute

// ExpansionStage runs one pass of the reminder pipeline's expansion stage.
type ExpansionStage struct {
	jobs      domain.ExpansionJobRepository
	versions  domain.EventReminderVersionRepository
	reminders domain.ReminderRepository
	events    calendardomain.CalendarEventRepository
	calendars calendardomain.CalendarRepository
}

// NewExpansionStage creates an ExpansionStage.
func NewExpansionStage(jobs domain.ExpansionJobRepository, versions domain.EventReminderVersionRepository, reminders domain.ReminderRepository, events calendardomain.CalendarEventRepository, calendars calendardomain.CalendarRepository) *ExpansionStage {
	return &ExpansionStage{jobs: jobs, versions: versions, reminders: reminders, events: events, calendars: calendars}
}

// Run dequeues every due job and re-expands its event's reminders.
func (s *ExpansionStage) Run(ctx context.Context, now time.Time) error {
	horizon := ExpansionPeriod + expansionSlack
	due, err := s.jobs.DequeueDue(ctx, now.Add(horizon).UnixMilli())
	if err != nil {
		return err
	}

	for _, job := range due {
		if err := s.expandOne(ctx, job, now, horizon); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExpansionStage) expandOne(ctx context.Context, job domain.ExpansionJob, now time.Time, horizon time.Duration) error {
	event, err := s.events.FindByID(ctx, job.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		return nil // deleted since enqueue; drop the job
	}

	currentVersion, known, err := s.versions.Get(ctx, job.EventID)
	if err != nil {
		return err
	}
	if !known {
		currentVersion = event.ReminderVersion()
	}
	if currentVersion != job.Version {
		return nil // superseded by a newer expansion; drop the stale job
	}

	if len(event.Reminders()) == 0 {
		return nil
	}

	window, err := timeline.NewTimeSpan(now, now.Add(horizon))
	if err != nil {
		return err
	}

	var instances []timeline.Instance
	if !event.IsRecurring() {
		inst := timeline.Instance{StartMs: event.StartTimeMs(), EndMs: event.StartTimeMs() + event.DurationMs(), Busy: event.Busy()}
		if inst.Span().Overlaps(window) {
			instances = []timeline.Instance{inst}
		}
	} else {
		cal, err := s.calendars.FindByID(ctx, event.CalendarID())
		if err != nil {
			return err
		}
		settings := recurrence.DefaultSettings
		if cal != nil {
			settings = cal.Settings()
		}
		instances, err = recurrence.Expand(event, window, settings)
		if err != nil {
			return err
		}
	}

	var rows []domain.Reminder
	var lastRemindAt int64
	for _, instance := range instances {
		for _, offset := range event.Reminders() {
			remindAt := instance.StartMs + offset.DeltaMs
			if remindAt < window.StartMs || remindAt >= window.EndMs {
				continue
			}
			rows = append(rows, domain.Reminder{
				EventID:    event.ID(),
				AccountID:  event.AccountID(),
				RemindAtMs: remindAt,
				Version:    currentVersion,
				Identifier: offset.Identifier,
			})
			if remindAt > lastRemindAt {
				lastRemindAt = remindAt
			}
		}
	}

	if len(rows) > 0 {
		if err := s.reminders.InsertBatch(ctx, rows); err != nil {
			return err
		}
	}

	nextBoundary := now.Add(ExpansionPeriod).UnixMilli()
	if lastRemindAt > 0 {
		nextBoundary = lastRemindAt
	}

	return s.jobs.Enqueue(ctx, domain.ExpansionJob{
		EventID:     event.ID(),
		TimestampMs: nextBoundary,
		Version:     currentVersion,
	})
}

// ScheduleInitialExpansion enqueues the first expansion job for a
// newly-created (or newly-recurrence-touched) event, initializing its
// reminder version if this is the event's first expansion.
func ScheduleInitialExpansion(ctx context.Context, jobs domain.ExpansionJobRepository, versions domain.EventReminderVersionRepository, event *calendardomain.CalendarEvent, now time.Time) error {
	if len(event.Reminders()) == 0 {
		return nil
	}
	version, err := versions.GetOrInit(ctx, event.ID())
	if err != nil {
		return err
	}
	return jobs.Enqueue(ctx, domain.ExpansionJob{
		EventID:     event.ID(),
		TimestampMs: now.UnixMilli(),
		Version:     version,
	})
}
