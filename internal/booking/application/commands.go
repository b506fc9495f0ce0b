package application

import (
	"context"
	"errors"

	calendardomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	sharedApplication "github.com/nitro-scheduler/nitro/internal/shared/application"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var ErrSlotNoLongerAvailable = errors.New("booking: slot no longer available")

// CreateBookingCommand books one slot of a service for an external attendee.
type CreateBookingCommand struct {
	ServiceID   uuid.UUID
	SlotStartMs int64
	DurationMs  int64
	Title       string
	Description string
	Metadata    map[string]string
}

func (CreateBookingCommand) CommandName() string { return "booking.create_booking" }

// CreateBookingResult reports who ended up hosting the booking.
type CreateBookingResult struct {
	HostUserIDs []uuid.UUID
	EventIDs    []uuid.UUID
	GroupCount  int
}

// CreateBookingHandler implements the booking-intend use case: dispatch a
// host per the service's mode and materialize the owning calendar event(s).
// Every service member is treated as a qualifying candidate; the slot is not
// re-checked against members' live timelines, and the availability
// round-robin receives no next-busy data, so it picks the lowest user id.
type CreateBookingHandler struct {
	services    domain.ServiceRepository
	resources   domain.ServiceResourceRepository
	eventCounts domain.ServiceEventCountRepository
	counter     domain.ReservationCounter
	calEvents   calendardomain.CalendarEventRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
}

// NewCreateBookingHandler creates a CreateBookingHandler.
func NewCreateBookingHandler(services domain.ServiceRepository, resources domain.ServiceResourceRepository, eventCounts domain.ServiceEventCountRepository, counter domain.ReservationCounter, calEvents calendardomain.CalendarEventRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateBookingHandler {
	return &CreateBookingHandler{
		services: services, resources: resources, eventCounts: eventCounts,
		counter: counter, calEvents: calEvents, outboxRepo: outboxRepo, uow: uow,
	}
}

// Handle dispatches a host per the service's mode and materializes the
// owning calendar event(s) within a single transaction.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	service, err := h.services.FindByID(ctx, cmd.ServiceID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}

	if service.MultiPerson() == domain.ModeGroup {
		return h.handleGroup(ctx, service, cmd)
	}
	return h.handleSingleOrRoundRobin(ctx, service, cmd)
}

func (h *CreateBookingHandler) handleSingleOrRoundRobin(ctx context.Context, service *domain.Service, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	members, err := h.resources.ListByService(ctx, service.ID())
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrSlotNoLongerAvailable
	}

	qualifying := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		qualifying = append(qualifying, m.UserID())
	}

	host, err := SelectHost(ctx, service, qualifying, cmd.SlotStartMs, h.eventCounts, func(userID uuid.UUID) (*int64, error) {
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	var result *CreateBookingResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		event, err := h.materializeEvent(txCtx, service, host, cmd)
		if err != nil {
			return err
		}
		result = &CreateBookingResult{HostUserIDs: []uuid.UUID{host}, EventIDs: []uuid.UUID{event.ID()}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *CreateBookingHandler) handleGroup(ctx context.Context, service *domain.Service, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	intent, err := ReserveGroupSeat(ctx, h.counter, service.ID(), cmd.SlotStartMs, service.GroupMaxCount())
	if err != nil {
		return nil, err
	}
	if !intent.CreateEventForHosts {
		return &CreateBookingResult{GroupCount: intent.GroupCount}, nil
	}

	members, err := h.resources.ListByService(ctx, service.ID())
	if err != nil {
		return nil, err
	}

	var result *CreateBookingResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var hostIDs, eventIDs []uuid.UUID
		for _, m := range members {
			event, err := h.materializeEvent(txCtx, service, m.UserID(), cmd)
			if err != nil {
				return err
			}
			hostIDs = append(hostIDs, m.UserID())
			eventIDs = append(eventIDs, event.ID())
		}
		result = &CreateBookingResult{HostUserIDs: hostIDs, EventIDs: eventIDs, GroupCount: intent.GroupCount}
		return nil
	})
	if err != nil {
		_ = RestoreGroupSeat(ctx, h.counter, service.ID(), cmd.SlotStartMs)
		return nil, err
	}
	return result, nil
}

func (h *CreateBookingHandler) materializeEvent(ctx context.Context, service *domain.Service, hostUserID uuid.UUID, cmd CreateBookingCommand) (*calendardomain.CalendarEvent, error) {
	serviceID := service.ID()
	event, err := calendardomain.NewCalendarEvent(calendardomain.NewCalendarEventParams{
		AccountID:   service.AccountID(),
		CalendarID:  hostUserID, // the host's primary calendar is keyed by user id in this deployment's seed data
		UserID:      hostUserID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Status:      calendardomain.StatusConfirmed,
		Busy:        true,
		StartTimeMs: cmd.SlotStartMs,
		DurationMs:  cmd.DurationMs,
		ServiceID:   &serviceID,
		EventType:   "booking",
		Metadata:    cmd.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if err := h.calEvents.Save(ctx, event); err != nil {
		return nil, err
	}
	if err := publishBookingEvents(ctx, h.outboxRepo, event, hostUserID); err != nil {
		return nil, err
	}
	return event, nil
}

func publishBookingEvents(ctx context.Context, repo outbox.Repository, agg interface {
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

// CancelBookingCommand cancels a previously created booking event and
// releases its group seat, if any.
type CancelBookingCommand struct {
	ServiceID   uuid.UUID
	SlotStartMs int64
	EventID     uuid.UUID
}

func (CancelBookingCommand) CommandName() string { return "booking.cancel_booking" }

// CancelBookingHandler handles CancelBookingCommand.
type CancelBookingHandler struct {
	services  domain.ServiceRepository
	counter   domain.ReservationCounter
	calEvents calendardomain.CalendarEventRepository
	uow       sharedApplication.UnitOfWork
}

// NewCancelBookingHandler creates a CancelBookingHandler.
func NewCancelBookingHandler(services domain.ServiceRepository, counter domain.ReservationCounter, calEvents calendardomain.CalendarEventRepository, uow sharedApplication.UnitOfWork) *CancelBookingHandler {
	return &CancelBookingHandler{services: services, counter: counter, calEvents: calEvents, uow: uow}
}

// Handle deletes the booking's calendar event and, for Group-mode services,
// releases the freed seat.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) error {
	service, err := h.services.FindByID(ctx, cmd.ServiceID)
	if err != nil {
		return err
	}
	if service == nil {
		return ErrServiceNotFound
	}

	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.calEvents.Delete(txCtx, cmd.EventID); err != nil {
			return err
		}
		if service.MultiPerson() == domain.ModeGroup {
			return ReleaseGroupSeat(txCtx, h.counter, service.ID(), cmd.SlotStartMs)
		}
		return nil
	})
}
