package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	calendardomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/reminder/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/eventbus"
)

// EventConsumer reacts to calendar event lifecycle events, scheduling
// reminder expansion on create/reschedule — the entry point into the
// reminder pipeline. A deletion is a no-op here: reminder rows already
// expanded for the deleted event are discarded by the dispatcher, which
// skips rows whose event no longer exists.
type EventConsumer struct {
	jobs      domain.ExpansionJobRepository
	versions  domain.EventReminderVersionRepository
	reminders domain.ReminderRepository
	events    calendardomain.CalendarEventRepository
	now       func() time.Time
}

// NewEventConsumer creates an EventConsumer. now defaults to time.Now.
func NewEventConsumer(jobs domain.ExpansionJobRepository, versions domain.EventReminderVersionRepository, reminders domain.ReminderRepository, events calendardomain.CalendarEventRepository) *EventConsumer {
	return &EventConsumer{jobs: jobs, versions: versions, reminders: reminders, events: events, now: time.Now}
}

// EventTypes lists the calendar event routing keys this consumer reacts to.
func (c *EventConsumer) EventTypes() []string {
	return []string{"calendar.event.created", "calendar.event.rescheduled", "calendar.event.deleted"}
}

// Handle schedules reminder expansion for a created or rescheduled event
// and ignores deletions.
func (c *EventConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if event.RoutingKey == "calendar.event.deleted" {
		return nil
	}

	var envelope struct {
		EventUID string `json:"EventUID"`
	}
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return fmt.Errorf("reminder event consumer: decoding payload: %w", err)
	}

	calEvent, err := c.events.FindByID(ctx, event.AggregateID)
	if err != nil {
		return err
	}
	if calEvent == nil {
		return nil
	}

	return ScheduleInitialExpansion(ctx, c.jobs, c.versions, calEvent, c.now())
}
