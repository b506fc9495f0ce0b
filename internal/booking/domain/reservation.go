package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSlotFull is returned when a Group-mode booking-intend finds the seat
// count already at capacity.
var ErrSlotFull = errors.New("booking: slot full")

// ReservationCounter is the atomic `reservations(service_id, timestamp,
// count)` contract: every operation must be implemented as a single
// DB-level statement so concurrent callers never observe a torn
// check-then-increment.
type ReservationCounter interface {
	// Increment performs an upsert `count = count + 1`, returning the new count.
	Increment(ctx context.Context, serviceID uuid.UUID, timestampMs int64) (int, error)
	// Decrement performs `count = count - 1 WHERE count > 0`.
	Decrement(ctx context.Context, serviceID uuid.UUID, timestampMs int64) error
	// Get returns the current count, or 0 if no row exists.
	Get(ctx context.Context, serviceID uuid.UUID, timestampMs int64) (int, error)
}

// ServiceRepository persists Service aggregates.
type ServiceRepository interface {
	Save(ctx context.Context, service *Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceResourceRepository persists ServiceResource entities.
type ServiceResourceRepository interface {
	Save(ctx context.Context, resource *ServiceResource) error
	FindByServiceAndUser(ctx context.Context, serviceID, userID uuid.UUID) (*ServiceResource, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]*ServiceResource, error)
	Delete(ctx context.Context, serviceID, userID uuid.UUID) error
}

// BusyCalendarLinkRepository persists BusyCalendarLink entities.
type BusyCalendarLinkRepository interface {
	Save(ctx context.Context, link *BusyCalendarLink) error
	ListByServiceAndUser(ctx context.Context, serviceID, userID uuid.UUID) ([]*BusyCalendarLink, error)
	Delete(ctx context.Context, serviceID, userID, syncedCalendarID uuid.UUID) error
}

// ServiceEventCountRepository counts how many service-events a user has
// hosted on the account over a rolling window, used by the
// equal-distribution round-robin algorithm.
type ServiceEventCountRepository interface {
	CountRecentServiceEvents(ctx context.Context, accountID, userID uuid.UUID, sinceMs int64) (int, error)
}
