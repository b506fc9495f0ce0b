// Package domain holds the Booking bounded context's aggregates: Service,
// ServiceResource, BusyCalendarLink and Reservation — the entities behind
// the slot solver and mode dispatcher.
package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidBuffer        = errors.New("service: buffer must be within [0, 12h]")
	ErrInvalidBookingBounds = errors.New("service: closest/furthest booking bounds must be >= 0")
	ErrInvalidMaxCount      = errors.New("service: group max_count must be >= 1")
)

const maxBufferMs = int64(12 * time.Hour / time.Millisecond)

// MultiPersonMode is the closed set of ways a service aggregates its
// member users into a single bookable resource.
type MultiPersonMode string

const (
	ModeSingle     MultiPersonMode = "single"
	ModeRoundRobin MultiPersonMode = "round_robin"
	ModeGroup      MultiPersonMode = "group"
)

// RoundRobinAlgorithm picks which qualifying participant is selected on a
// booking-intend, when MultiPerson == ModeRoundRobin.
type RoundRobinAlgorithm string

const (
	RoundRobinEqualDistribution RoundRobinAlgorithm = "equal_distribution"
	RoundRobinAvailability      RoundRobinAlgorithm = "availability"
)

// Service is the bookable resource an account exposes; it aggregates one
// or more ServiceResource members under a dispatch mode.
type Service struct {
	sharedDomain.BaseAggregateRoot
	accountID           uuid.UUID
	name                string
	multiPerson         MultiPersonMode
	roundRobinAlgorithm RoundRobinAlgorithm
	groupMaxCount       int
	metadata            map[string]string
}

// NewService creates a service in Single mode by default; use
// ConfigureRoundRobin/ConfigureGroup to switch modes.
func NewService(accountID uuid.UUID, name string, metadata map[string]string) *Service {
	return &Service{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		accountID:         accountID,
		name:              name,
		multiPerson:       ModeSingle,
		metadata:          metadata,
	}
}

// RehydrateService recreates a service from persisted state.
func RehydrateService(id, accountID uuid.UUID, name string, mode MultiPersonMode, algo RoundRobinAlgorithm, groupMaxCount int, metadata map[string]string, createdAt, updatedAt time.Time) *Service {
	return &Service{
		BaseAggregateRoot:   sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), 0),
		accountID:           accountID,
		name:                name,
		multiPerson:         mode,
		roundRobinAlgorithm: algo,
		groupMaxCount:       groupMaxCount,
		metadata:            metadata,
	}
}

func (s *Service) AccountID() uuid.UUID                     { return s.accountID }
func (s *Service) Name() string                             { return s.name }
func (s *Service) MultiPerson() MultiPersonMode             { return s.multiPerson }
func (s *Service) RoundRobinAlgorithm() RoundRobinAlgorithm { return s.roundRobinAlgorithm }
func (s *Service) GroupMaxCount() int                       { return s.groupMaxCount }
func (s *Service) Metadata() map[string]string              { return s.metadata }

// ConfigureSingle switches the service to single-host mode.
func (s *Service) ConfigureSingle() {
	s.multiPerson = ModeSingle
	s.Touch()
}

// ConfigureRoundRobin switches the service to round-robin mode with the
// given selection algorithm.
func (s *Service) ConfigureRoundRobin(algo RoundRobinAlgorithm) {
	s.multiPerson = ModeRoundRobin
	s.roundRobinAlgorithm = algo
	s.Touch()
}

// ConfigureGroup switches the service to group mode with the given seat count.
func (s *Service) ConfigureGroup(maxCount int) error {
	if maxCount < 1 {
		return ErrInvalidMaxCount
	}
	s.multiPerson = ModeGroup
	s.groupMaxCount = maxCount
	s.Touch()
	return nil
}

// AvailabilityKind distinguishes the three ways a ServiceResource's free
// time can be derived.
type AvailabilityKind string

const (
	AvailabilityEmpty    AvailabilityKind = "empty"
	AvailabilityCalendar AvailabilityKind = "calendar"
	AvailabilitySchedule AvailabilityKind = "schedule"
)

// Availability is a tagged reference to the source of a ServiceResource's
// free timeline.
type Availability struct {
	Kind       AvailabilityKind
	ResourceID uuid.UUID // valid when Kind != AvailabilityEmpty
}

// ServiceResource (a "service user") is one member of a Service: a user
// plus the buffers and booking-window bounds that apply when they host.
type ServiceResource struct {
	sharedDomain.BaseEntity
	serviceID          uuid.UUID
	userID             uuid.UUID
	availability       Availability
	bufferBeforeMs     int64
	bufferAfterMs      int64
	closestBookingMs   int64
	furthestBookingMs  *int64
}

// NewServiceResource adds a user to a service, validating buffer and
// booking-window bounds.
func NewServiceResource(serviceID, userID uuid.UUID, availability Availability, bufferBeforeMs, bufferAfterMs, closestBookingMs int64, furthestBookingMs *int64) (*ServiceResource, error) {
	if bufferBeforeMs < 0 || bufferBeforeMs > maxBufferMs || bufferAfterMs < 0 || bufferAfterMs > maxBufferMs {
		return nil, ErrInvalidBuffer
	}
	if closestBookingMs < 0 || (furthestBookingMs != nil && *furthestBookingMs < 0) {
		return nil, ErrInvalidBookingBounds
	}
	return &ServiceResource{
		BaseEntity:        sharedDomain.NewBaseEntity(),
		serviceID:         serviceID,
		userID:            userID,
		availability:      availability,
		bufferBeforeMs:    bufferBeforeMs,
		bufferAfterMs:     bufferAfterMs,
		closestBookingMs:  closestBookingMs,
		furthestBookingMs: furthestBookingMs,
	}, nil
}

// RehydrateServiceResource recreates a service resource from persisted state.
func RehydrateServiceResource(id, serviceID, userID uuid.UUID, availability Availability, bufferBeforeMs, bufferAfterMs, closestBookingMs int64, furthestBookingMs *int64, createdAt, updatedAt time.Time) *ServiceResource {
	return &ServiceResource{
		BaseEntity:        sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		serviceID:         serviceID,
		userID:            userID,
		availability:      availability,
		bufferBeforeMs:    bufferBeforeMs,
		bufferAfterMs:     bufferAfterMs,
		closestBookingMs:  closestBookingMs,
		furthestBookingMs: furthestBookingMs,
	}
}

func (r *ServiceResource) ServiceID() uuid.UUID          { return r.serviceID }
func (r *ServiceResource) UserID() uuid.UUID             { return r.userID }
func (r *ServiceResource) Availability() Availability    { return r.availability }
func (r *ServiceResource) BufferBeforeMs() int64         { return r.bufferBeforeMs }
func (r *ServiceResource) BufferAfterMs() int64          { return r.bufferAfterMs }
func (r *ServiceResource) ClosestBookingMs() int64       { return r.closestBookingMs }
func (r *ServiceResource) FurthestBookingMs() *int64     { return r.furthestBookingMs }

// BusyCalendarLink attaches an externally-synced calendar as an extra busy
// source for a user within a given service.
type BusyCalendarLink struct {
	sharedDomain.BaseEntity
	serviceID        uuid.UUID
	userID           uuid.UUID
	syncedCalendarID uuid.UUID
}

// NewBusyCalendarLink attaches a busy calendar to a service/user pair.
func NewBusyCalendarLink(serviceID, userID, syncedCalendarID uuid.UUID) *BusyCalendarLink {
	return &BusyCalendarLink{
		BaseEntity:       sharedDomain.NewBaseEntity(),
		serviceID:        serviceID,
		userID:           userID,
		syncedCalendarID: syncedCalendarID,
	}
}

// RehydrateBusyCalendarLink recreates a busy calendar link from persisted state.
func RehydrateBusyCalendarLink(id, serviceID, userID, syncedCalendarID uuid.UUID, createdAt, updatedAt time.Time) *BusyCalendarLink {
	return &BusyCalendarLink{
		BaseEntity:       sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		serviceID:        serviceID,
		userID:           userID,
		syncedCalendarID: syncedCalendarID,
	}
}

func (l *BusyCalendarLink) ServiceID() uuid.UUID        { return l.serviceID }
func (l *BusyCalendarLink) UserID() uuid.UUID           { return l.userID }
func (l *BusyCalendarLink) SyncedCalendarID() uuid.UUID { return l.syncedCalendarID }
