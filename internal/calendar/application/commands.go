// Package application hosts the Calendar bounded context's use cases:
// one value type per command/query, each with a Handle method, wired
// through a unit of work and persisting its domain events to the outbox.
package application

import (
	"context"
	"errors"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/calendar/recurrence"
	sharedApplication "github.com/nitro-scheduler/nitro/internal/shared/application"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var ErrCalendarNotFound = errors.New("calendar: not found")

// CreateCalendarCommand creates a new calendar for a user.
type CreateCalendarCommand struct {
	AccountID uuid.UUID
	UserID    uuid.UUID
	Name      string
	Key       string
	Settings  domain.CalendarSettings
	Metadata  map[string]string
}

func (CreateCalendarCommand) CommandName() string { return "calendar.create_calendar" }

// CreateCalendarHandler handles CreateCalendarCommand.
type CreateCalendarHandler struct {
	calendars domain.CalendarRepository
	uow       sharedApplication.UnitOfWork
}

// NewCreateCalendarHandler creates a CreateCalendarHandler.
func NewCreateCalendarHandler(calendars domain.CalendarRepository, uow sharedApplication.UnitOfWork) *CreateCalendarHandler {
	return &CreateCalendarHandler{calendars: calendars, uow: uow}
}

// Handle creates and persists the calendar.
func (h *CreateCalendarHandler) Handle(ctx context.Context, cmd CreateCalendarCommand) (*domain.Calendar, error) {
	cal, err := domain.NewCalendar(cmd.AccountID, cmd.UserID, cmd.Name, cmd.Key, cmd.Settings, cmd.Metadata)
	if err != nil {
		return nil, err
	}

	var result *domain.Calendar
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.calendars.Save(txCtx, cal); err != nil {
			return err
		}
		result = cal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCalendarCommand removes a calendar and all its events.
type DeleteCalendarCommand struct {
	CalendarID uuid.UUID
}

func (DeleteCalendarCommand) CommandName() string { return "calendar.delete_calendar" }

// DeleteCalendarHandler handles DeleteCalendarCommand.
type DeleteCalendarHandler struct {
	calendars domain.CalendarRepository
	uow       sharedApplication.UnitOfWork
}

// NewDeleteCalendarHandler creates a DeleteCalendarHandler.
func NewDeleteCalendarHandler(calendars domain.CalendarRepository, uow sharedApplication.UnitOfWork) *DeleteCalendarHandler {
	return &DeleteCalendarHandler{calendars: calendars, uow: uow}
}

// Handle deletes the calendar, relying on the store's cascade to drop
// owned events, groups, and synced-calendar links.
func (h *DeleteCalendarHandler) Handle(ctx context.Context, cmd DeleteCalendarCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.calendars.Delete(txCtx, cmd.CalendarID)
	})
}

// CreateEventCommand creates a new (possibly recurring) calendar event.
type CreateEventCommand struct {
	UserID   uuid.UUID
	Params   domain.NewCalendarEventParams
}

func (CreateEventCommand) CommandName() string { return "calendar.create_event" }

// CreateEventHandler handles CreateEventCommand.
type CreateEventHandler struct {
	events     domain.CalendarEventRepository
	calendars  domain.CalendarRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateEventHandler creates a CreateEventHandler.
func NewCreateEventHandler(events domain.CalendarEventRepository, calendars domain.CalendarRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateEventHandler {
	return &CreateEventHandler{events: events, calendars: calendars, outboxRepo: outboxRepo, uow: uow}
}

// Handle validates the recurrence rule (if any), persists the event, and
// publishes its domain events through the outbox.
func (h *CreateEventHandler) Handle(ctx context.Context, cmd CreateEventCommand) (*domain.CalendarEvent, error) {
	eventStart := time.UnixMilli(cmd.Params.StartTimeMs).UTC()
	if err := recurrence.ValidateRule(cmd.Params.Recurrence, eventStart); err != nil {
		return nil, err
	}

	event, err := domain.NewCalendarEvent(cmd.Params)
	if err != nil {
		return nil, err
	}

	var result *domain.CalendarEvent
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		cal, err := h.calendars.FindByID(txCtx, cmd.Params.CalendarID)
		if err != nil {
			return err
		}
		if cal == nil {
			return ErrCalendarNotFound
		}

		if err := h.events.Save(txCtx, event); err != nil {
			return err
		}

		if err := publishDomainEvents(txCtx, h.outboxRepo, event, cmd.UserID); err != nil {
			return err
		}

		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RescheduleEventCommand changes an event's start time and/or duration.
type RescheduleEventCommand struct {
	UserID      uuid.UUID
	EventID     uuid.UUID
	StartTimeMs int64
	DurationMs  int64
}

func (RescheduleEventCommand) CommandName() string { return "calendar.reschedule_event" }

// RescheduleEventHandler handles RescheduleEventCommand.
type RescheduleEventHandler struct {
	events     domain.CalendarEventRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewRescheduleEventHandler creates a RescheduleEventHandler.
func NewRescheduleEventHandler(events domain.CalendarEventRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RescheduleEventHandler {
	return &RescheduleEventHandler{events: events, outboxRepo: outboxRepo, uow: uow}
}

// Handle reschedules the event, bumping its reminder version.
func (h *RescheduleEventHandler) Handle(ctx context.Context, cmd RescheduleEventCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		event, err := h.events.FindByID(txCtx, cmd.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return ErrCalendarNotFound
		}
		if err := event.ApplyReschedule(cmd.StartTimeMs, cmd.DurationMs); err != nil {
			return err
		}
		if err := h.events.Save(txCtx, event); err != nil {
			return err
		}
		return publishDomainEvents(txCtx, h.outboxRepo, event, cmd.UserID)
	})
}

// DeleteEventCommand deletes a single event.
type DeleteEventCommand struct {
	UserID  uuid.UUID
	EventID uuid.UUID
}

func (DeleteEventCommand) CommandName() string { return "calendar.delete_event" }

// DeleteEventHandler handles DeleteEventCommand.
type DeleteEventHandler struct {
	events     domain.CalendarEventRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewDeleteEventHandler creates a DeleteEventHandler.
func NewDeleteEventHandler(events domain.CalendarEventRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteEventHandler {
	return &DeleteEventHandler{events: events, outboxRepo: outboxRepo, uow: uow}
}

// Handle removes the event and publishes a CalendarEventDeleted event so
// the reminder pipeline and outbound sync can drop their derived state.
func (h *DeleteEventHandler) Handle(ctx context.Context, cmd DeleteEventCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		event, err := h.events.FindByID(txCtx, cmd.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return ErrCalendarNotFound
		}
		if err := h.events.Delete(txCtx, cmd.EventID); err != nil {
			return err
		}
		deleted := domain.NewCalendarEventDeleted(event.ID(), event.CalendarID())
		metadata := sharedApplication.NewEventMetadata(cmd.UserID)
		deleted.SetMetadata(metadata)
		msg, err := outbox.NewMessage(deleted)
		if err != nil {
			return err
		}
		return h.outboxRepo.Save(txCtx, msg)
	})
}

// DeleteManyEventsCommand removes events by id, in bulk.
type DeleteManyEventsCommand struct {
	UserID   uuid.UUID
	EventIDs []uuid.UUID
}

func (DeleteManyEventsCommand) CommandName() string { return "calendar.delete_many_events" }

// DeleteManyEventsHandler handles DeleteManyEventsCommand.
type DeleteManyEventsHandler struct {
	events domain.CalendarEventRepository
	uow    sharedApplication.UnitOfWork
}

// NewDeleteManyEventsHandler creates a DeleteManyEventsHandler.
func NewDeleteManyEventsHandler(events domain.CalendarEventRepository, uow sharedApplication.UnitOfWork) *DeleteManyEventsHandler {
	return &DeleteManyEventsHandler{events: events, uow: uow}
}

// Handle deletes every listed event id within a single transaction.
func (h *DeleteManyEventsHandler) Handle(ctx context.Context, cmd DeleteManyEventsCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.events.DeleteMany(txCtx, cmd.EventIDs)
	})
}

func publishDomainEvents(ctx context.Context, repo outbox.Repository, agg interface {
	DomainEvents() []shareddomain.DomainEvent
	ClearDomainEvents()
}, userID uuid.UUID) error {
	events := agg.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	return nil
}
