package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// CreateServiceCommand creates a new bookable service.
type CreateServiceCommand struct {
	AccountID uuid.UUID
	Name      string
	Metadata  map[string]string
}

func (CreateServiceCommand) CommandName() string { return "booking.create_service" }

// AddMemberCommand adds a resource (user or virtual calendar resource) to a service.
type AddMemberCommand struct {
	ServiceID         uuid.UUID
	UserID            uuid.UUID
	Availability       domain.Availability
	BufferBeforeMs     int64
	BufferAfterMs      int64
	ClosestBookingMs   int64
	FurthestBookingMs  *int64
}

func (AddMemberCommand) CommandName() string { return "booking.add_member" }

// AttachBusyCalendarCommand links an extra calendar a member's availability
// must also treat as busy (e.g. a personal calendar synced from Google).
type AttachBusyCalendarCommand struct {
	ServiceID        uuid.UUID
	UserID           uuid.UUID
	SyncedCalendarID uuid.UUID
}

func (AttachBusyCalendarCommand) CommandName() string { return "booking.attach_busy_calendar" }

// ServiceHandler implements service configuration use cases.
type ServiceHandler struct {
	services  domain.ServiceRepository
	resources domain.ServiceResourceRepository
	busyLinks domain.BusyCalendarLinkRepository
}

// NewServiceHandler creates a ServiceHandler.
func NewServiceHandler(services domain.ServiceRepository, resources domain.ServiceResourceRepository, busyLinks domain.BusyCalendarLinkRepository) *ServiceHandler {
	return &ServiceHandler{services: services, resources: resources, busyLinks: busyLinks}
}

// HandleCreate creates and persists a new service.
func (h *ServiceHandler) HandleCreate(ctx context.Context, cmd CreateServiceCommand) (*domain.Service, error) {
	service := domain.NewService(cmd.AccountID, cmd.Name, cmd.Metadata)
	if err := h.services.Save(ctx, service); err != nil {
		return nil, apperror.Internal("booking: saving service", err)
	}
	return service, nil
}

// HandleAddMember adds a resource to the service's member pool.
func (h *ServiceHandler) HandleAddMember(ctx context.Context, cmd AddMemberCommand) (*domain.ServiceResource, error) {
	resource, err := domain.NewServiceResource(cmd.ServiceID, cmd.UserID, cmd.Availability, cmd.BufferBeforeMs, cmd.BufferAfterMs, cmd.ClosestBookingMs, cmd.FurthestBookingMs)
	if err != nil {
		return nil, apperror.BadClientData("booking: invalid member", err)
	}
	if err := h.resources.Save(ctx, resource); err != nil {
		return nil, apperror.Internal("booking: saving member", err)
	}
	return resource, nil
}

// HandleAttachBusyCalendar links an extra busy calendar to a member.
func (h *ServiceHandler) HandleAttachBusyCalendar(ctx context.Context, cmd AttachBusyCalendarCommand) error {
	link := domain.NewBusyCalendarLink(cmd.ServiceID, cmd.UserID, cmd.SyncedCalendarID)
	if err := h.busyLinks.Save(ctx, link); err != nil {
		return apperror.Internal("booking: attaching busy calendar", err)
	}
	return nil
}
