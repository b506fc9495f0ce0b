package application

import (
	"context"
	"sort"
	"time"

	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	"github.com/google/uuid"
)

// IntendResult is the outcome of a booking-intend call.
type IntendResult struct {
	HostUserID         uuid.UUID
	CreateEventForHosts bool
	GroupCount         int
}

// SelectHost implements the booking mode dispatcher for the Single and
// RoundRobin modes (Group mode has no single "host" selection — see
// ReserveGroupSeat).
func SelectHost(ctx context.Context, service *domain.Service, qualifying []uuid.UUID, slotStartMs int64, eventCounts domain.ServiceEventCountRepository, busyAfter func(userID uuid.UUID) (*int64, error)) (uuid.UUID, error) {
	if len(qualifying) == 0 {
		return uuid.Nil, ErrNoQualifyingParticipant
	}

	switch service.MultiPerson() {
	case domain.ModeSingle:
		return qualifying[0], nil

	case domain.ModeRoundRobin:
		switch service.RoundRobinAlgorithm() {
		case domain.RoundRobinAvailability:
			return selectByAvailability(qualifying, busyAfter)
		default:
			return selectByEqualDistribution(ctx, service.AccountID(), qualifying, eventCounts)
		}

	default:
		return qualifying[0], nil
	}
}

// ErrNoQualifyingParticipant is returned when SelectHost is called with no
// qualifying candidates for the slot.
var ErrNoQualifyingParticipant = domain.ErrSlotFull

func selectByEqualDistribution(ctx context.Context, accountID uuid.UUID, qualifying []uuid.UUID, eventCounts domain.ServiceEventCountRepository) (uuid.UUID, error) {
	sorted := append([]uuid.UUID{}, qualifying...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	since := time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
	best := sorted[0]
	bestCount := -1
	for _, candidate := range sorted {
		count, err := eventCounts.CountRecentServiceEvents(ctx, accountID, candidate, since)
		if err != nil {
			return uuid.Nil, err
		}
		if bestCount == -1 || count < bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best, nil
}

func selectByAvailability(qualifying []uuid.UUID, busyAfter func(userID uuid.UUID) (*int64, error)) (uuid.UUID, error) {
	sorted := append([]uuid.UUID{}, qualifying...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	best := sorted[0]
	var bestHeadroom int64 = -1
	for _, candidate := range sorted {
		next, err := busyAfter(candidate)
		if err != nil {
			return uuid.Nil, err
		}
		headroom := int64(1<<62 - 1)
		if next != nil {
			headroom = *next
		}
		if headroom > bestHeadroom {
			best = candidate
			bestHeadroom = headroom
		}
	}
	return best, nil
}

// ReserveGroupSeat implements group booking-intend: atomically
// increment the reservation counter and report whether this increment
// filled the group, so the caller knows to materialize the host event.
func ReserveGroupSeat(ctx context.Context, counter domain.ReservationCounter, serviceID uuid.UUID, timestampMs int64, maxCount int) (IntendResult, error) {
	current, err := counter.Get(ctx, serviceID, timestampMs)
	if err != nil {
		return IntendResult{}, err
	}
	if current >= maxCount {
		return IntendResult{}, domain.ErrSlotFull
	}

	newCount, err := counter.Increment(ctx, serviceID, timestampMs)
	if err != nil {
		return IntendResult{}, err
	}

	return IntendResult{CreateEventForHosts: newCount == maxCount, GroupCount: newCount}, nil
}

// ReleaseGroupSeat implements the booking-removal intend for Group mode.
func ReleaseGroupSeat(ctx context.Context, counter domain.ReservationCounter, serviceID uuid.UUID, timestampMs int64) error {
	return counter.Decrement(ctx, serviceID, timestampMs)
}

// RestoreGroupSeat is called when host-event materialization fails after a
// successful ReserveGroupSeat, to release the seat it had just filled.
func RestoreGroupSeat(ctx context.Context, counter domain.ReservationCounter, serviceID uuid.UUID, timestampMs int64) error {
	return counter.Decrement(ctx, serviceID, timestampMs)
}
