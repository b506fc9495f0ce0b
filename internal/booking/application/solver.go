// Package application hosts the booking-slot solver, the service mode
// dispatcher, and the booking-intend use case.
package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	schedulingdomain "github.com/nitro-scheduler/nitro/internal/scheduling/domain"
	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/google/uuid"
)

var (
	ErrInvalidDate     = errors.New("booking: invalid date")
	ErrInvalidTimezone = errors.New("booking: invalid timezone")
	ErrInvalidInterval = errors.New("booking: duration and interval must be positive")
	ErrWindowTooLarge  = errors.New("booking: window exceeds the booking query span cap")
	ErrServiceNotFound = errors.New("booking: service not found")
)

// ParticipantTimelines are the three timelines the solver needs for one
// participant, already projected into the clamped query window.
type ParticipantTimelines struct {
	UserID       uuid.UUID
	Availability []timeline.Instance // free time, per the resource's Availability
	BufferedBusy []timeline.Instance // owned + external busy, buffer-expanded
}

// EffectiveFree intersects availability with the complement of buffered busy.
func (p ParticipantTimelines) EffectiveFree(window timeline.TimeSpan) []timeline.Instance {
	mergedBusy := timeline.CompatibleMerge(p.BufferedBusy)
	freeFromBusy := timeline.Complement(mergedBusy, window)
	return intersectInstances(timeline.CompatibleMerge(p.Availability), freeFromBusy)
}

// intersectInstances computes the overlap of two ascending, non-overlapping
// instance sequences.
func intersectInstances(a, b []timeline.Instance) []timeline.Instance {
	var out []timeline.Instance
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := maxInt64(a[i].StartMs, b[j].StartMs)
		end := minInt64(a[i].EndMs, b[j].EndMs)
		if start < end {
			out = append(out, timeline.Instance{StartMs: start, EndMs: end, Busy: false})
		}
		if a[i].EndMs < b[j].EndMs {
			i++
		} else {
			j++
		}
	}
	return out
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Slot is one candidate booking start, with the participants eligible for it.
type Slot struct {
	StartMs      int64
	EndMs        int64
	Participants []uuid.UUID
}

// SlotsByDate groups the solver's output by local date in the query timezone.
type SlotsByDate struct {
	Date  string // YYYY-MM-DD in the query timezone
	Slots []Slot
}

// ComputeWindow computes the UTC day window for date D in
// zone Z, clamped to [now + max(closest), now + min(furthest)].
func ComputeWindow(date string, tz string, now time.Time, closestMs []int64, furthestMs []*int64) (timeline.TimeSpan, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return timeline.TimeSpan{}, ErrInvalidTimezone
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return timeline.TimeSpan{}, ErrInvalidDate
	}

	windowStart := day
	windowEnd := day.AddDate(0, 0, 1)

	var maxClosest int64
	for _, c := range closestMs {
		if c > maxClosest {
			maxClosest = c
		}
	}
	clampStart := now.Add(time.Duration(maxClosest) * time.Millisecond)
	if clampStart.After(windowStart) {
		windowStart = clampStart
	}

	var minFurthest *int64
	for _, f := range furthestMs {
		if f == nil {
			continue
		}
		if minFurthest == nil || *f < *minFurthest {
			minFurthest = f
		}
	}
	if minFurthest != nil {
		clampEnd := now.Add(time.Duration(*minFurthest) * time.Millisecond)
		if clampEnd.Before(windowEnd) {
			windowEnd = clampEnd
		}
	}

	span, err := timeline.NewTimeSpan(windowStart, windowEnd)
	if err != nil {
		return timeline.TimeSpan{}, err
	}
	if span.GreaterThan(timeline.MaxBookingQuerySpanMs) {
		return timeline.TimeSpan{}, ErrWindowTooLarge
	}
	return span, nil
}

// SolveSlots grid-samples candidate starts
// across the window and report, for each, the participants who qualify.
func SolveSlots(window timeline.TimeSpan, durationMs, intervalMs int64, tz string, participants []ParticipantTimelines) ([]SlotsByDate, error) {
	if durationMs <= 0 || intervalMs <= 0 {
		return nil, ErrInvalidInterval
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, ErrInvalidTimezone
	}

	effective := make(map[uuid.UUID][]timeline.Instance, len(participants))
	for _, p := range participants {
		effective[p.UserID] = p.EffectiveFree(window)
	}

	byDate := map[string]*SlotsByDate{}
	var order []string

	start := ((window.StartMs + intervalMs - 1) / intervalMs) * intervalMs
	for t := start; t+durationMs <= window.EndMs; t += intervalMs {
		span := timeline.Instance{StartMs: t, EndMs: t + durationMs}

		var eligible []uuid.UUID
		for _, p := range participants {
			if timeline.CoversFully(effective[p.UserID], span.Span()) {
				eligible = append(eligible, p.UserID)
			}
		}
		if len(eligible) == 0 {
			continue
		}

		dateKey := time.UnixMilli(t).In(loc).Format("2006-01-02")
		group, ok := byDate[dateKey]
		if !ok {
			group = &SlotsByDate{Date: dateKey}
			byDate[dateKey] = group
			order = append(order, dateKey)
		}
		group.Slots = append(group.Slots, Slot{StartMs: t, EndMs: t + durationMs, Participants: eligible})
	}

	sort.Strings(order)
	out := make([]SlotsByDate, 0, len(order))
	for _, d := range order {
		out = append(out, *byDate[d])
	}
	return out, nil
}

// BuildAvailabilityTimeline derives a participant's availability timeline
// dispatching on the resource's Availability kind.
func BuildAvailabilityTimeline(avail domain.Availability, window timeline.TimeSpan, calendarFree func() ([]timeline.Instance, error), schedule *schedulingdomain.Schedule) ([]timeline.Instance, error) {
	switch avail.Kind {
	case domain.AvailabilityCalendar:
		return calendarFree()
	case domain.AvailabilitySchedule:
		free, _, err := schedulingdomain.AvailableToFreeBusy(schedule, window)
		return free, err
	default:
		return nil, nil
	}
}
