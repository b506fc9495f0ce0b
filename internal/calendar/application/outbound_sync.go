package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/provider"
	"github.com/google/uuid"
)

// AdapterResolver resolves a user integration to its provider adapter.
// Implemented by internal/account; absent integrations are logged and
// skipped, never treated as an error that blocks the local write.
type AdapterResolver interface {
	ResolveAdapter(ctx context.Context, userIntegrationID uuid.UUID) (provider.Adapter, bool, error)
}

// OutboundSyncSubscriber implements outbound sync: after a local create/update/delete
// succeeds, push the change to every outbound-capable SyncedCalendar.
type OutboundSyncSubscriber struct {
	syncedCalendars domain.SyncedCalendarRepository
	syncedEvents    domain.SyncedCalendarEventRepository
	adapters        AdapterResolver
	logger          *slog.Logger
}

// NewOutboundSyncSubscriber creates an OutboundSyncSubscriber.
func NewOutboundSyncSubscriber(syncedCalendars domain.SyncedCalendarRepository, syncedEvents domain.SyncedCalendarEventRepository, adapters AdapterResolver, logger *slog.Logger) *OutboundSyncSubscriber {
	return &OutboundSyncSubscriber{syncedCalendars: syncedCalendars, syncedEvents: syncedEvents, adapters: adapters, logger: logger}
}

// OnEventCreated pushes a newly created event to every outbound sync target.
func (s *OutboundSyncSubscriber) OnEventCreated(ctx context.Context, event *domain.CalendarEvent) {
	s.forEachOutboundTarget(ctx, event.CalendarID(), func(sc *domain.SyncedCalendar, adapter provider.Adapter) {
		externalID, err := adapter.CreateEvent(ctx, sc.ExternalCalendarID(), toRemoteEvent(event))
		if err != nil {
			s.logger.Warn("outbound sync create failed", "event_id", event.ID(), "provider", sc.Provider(), "error", err)
			return
		}
		link := domain.NewSyncedCalendarEvent(sc.ID(), event.ID(), externalID, "")
		if err := s.syncedEvents.Save(ctx, link); err != nil {
			s.logger.Warn("outbound sync link save failed", "event_id", event.ID(), "error", err)
		}
	})
}

// OnEventUpdated pushes an update to every stored link for the event.
func (s *OutboundSyncSubscriber) OnEventUpdated(ctx context.Context, event *domain.CalendarEvent) {
	s.forEachOutboundTarget(ctx, event.CalendarID(), func(sc *domain.SyncedCalendar, adapter provider.Adapter) {
		link, err := s.syncedEvents.FindByEventAndSyncedCalendar(ctx, event.ID(), sc.ID())
		if err != nil {
			s.logger.Warn("outbound sync link lookup failed", "event_id", event.ID(), "error", err)
			return
		}
		if link == nil {
			return
		}
		if err := adapter.UpdateEvent(ctx, sc.ExternalCalendarID(), link.ExternalEventID(), toRemoteEvent(event)); err != nil {
			s.logger.Warn("outbound sync update failed", "event_id", event.ID(), "provider", sc.Provider(), "error", err)
		}
	})
}

// OnEventDeleted deletes the event from every stored link's provider and
// removes the link.
func (s *OutboundSyncSubscriber) OnEventDeleted(ctx context.Context, eventID, calendarID uuid.UUID) {
	s.forEachOutboundTarget(ctx, calendarID, func(sc *domain.SyncedCalendar, adapter provider.Adapter) {
		link, err := s.syncedEvents.FindByEventAndSyncedCalendar(ctx, eventID, sc.ID())
		if err != nil || link == nil {
			return
		}
		if err := adapter.DeleteEvent(ctx, sc.ExternalCalendarID(), link.ExternalEventID()); err != nil {
			s.logger.Warn("outbound sync delete failed", "event_id", eventID, "provider", sc.Provider(), "error", err)
			return
		}
		if err := s.syncedEvents.Delete(ctx, link.ID()); err != nil {
			s.logger.Warn("outbound sync link delete failed", "event_id", eventID, "error", err)
		}
	})
}

func (s *OutboundSyncSubscriber) forEachOutboundTarget(ctx context.Context, calendarID uuid.UUID, fn func(*domain.SyncedCalendar, provider.Adapter)) {
	links, err := s.syncedCalendars.FindByCalendar(ctx, calendarID)
	if err != nil {
		s.logger.Warn("outbound sync lookup failed", "calendar_id", calendarID, "error", err)
		return
	}
	for _, sc := range links {
		if !sc.SupportsOutbound() {
			continue
		}
		adapter, ok, err := s.adapters.ResolveAdapter(ctx, sc.UserIntegrationID())
		if err != nil || !ok {
			s.logger.Warn("outbound sync integration unresolved", "synced_calendar_id", sc.ID(), "error", err)
			continue
		}
		fn(sc, adapter)
	}
}

func toRemoteEvent(event *domain.CalendarEvent) provider.RemoteEvent {
	start := time.UnixMilli(event.StartTimeMs()).UTC()
	return provider.RemoteEvent{
		Title:       event.Title(),
		Description: event.Description(),
		Start:       start,
		End:         start.Add(time.Duration(event.DurationMs()) * time.Millisecond),
		Busy:        event.Busy(),
	}
}
