package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/eventbus"
)

// OutboundSyncConsumer adapts OutboundSyncSubscriber to eventbus.EventConsumer,
// so outbound provider sync runs off the same outbox-to-bus pipeline every
// other cross-context reaction uses rather than a direct in-process call.
type OutboundSyncConsumer struct {
	subscriber *OutboundSyncSubscriber
	events     domain.CalendarEventRepository
}

// NewOutboundSyncConsumer creates an OutboundSyncConsumer.
func NewOutboundSyncConsumer(subscriber *OutboundSyncSubscriber, events domain.CalendarEventRepository) *OutboundSyncConsumer {
	return &OutboundSyncConsumer{subscriber: subscriber, events: events}
}

// EventTypes lists the calendar event routing keys this consumer reacts to.
func (c *OutboundSyncConsumer) EventTypes() []string {
	return []string{"calendar.event.created", "calendar.event.rescheduled", "calendar.event.deleted"}
}

type calendarEventEnvelope struct {
	EventUID   string `json:"EventUID"`
	CalendarID string `json:"CalendarID"`
}

// Handle re-fetches the event (for created/rescheduled) and delegates to
// the OutboundSyncSubscriber.
func (c *OutboundSyncConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var envelope calendarEventEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return fmt.Errorf("outbound sync consumer: decoding payload: %w", err)
	}

	calendarID, err := uuid.Parse(envelope.CalendarID)
	if err != nil {
		return err
	}

	if event.RoutingKey == "calendar.event.deleted" {
		c.subscriber.OnEventDeleted(ctx, event.AggregateID, calendarID)
		return nil
	}

	calEvent, err := c.events.FindByID(ctx, event.AggregateID)
	if err != nil {
		return err
	}
	if calEvent == nil {
		return nil
	}

	if event.RoutingKey == "calendar.event.created" {
		c.subscriber.OnEventCreated(ctx, calEvent)
	} else {
		c.subscriber.OnEventUpdated(ctx, calEvent)
	}
	return nil
}
