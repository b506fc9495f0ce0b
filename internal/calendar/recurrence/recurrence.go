// Package recurrence expands a CalendarEvent's recurrence rule into
// concrete instances within a window, using teambition/rrule-go as the
// RFC-5545 rule engine and applying exception dates and per-instance
// overrides on top.
package recurrence

import (
	"errors"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/teambition/rrule-go"
)

var (
	// ErrInvalidRecurrenceRule is returned when a rule's count or until
	// exceeds the engine's expansion limits.
	ErrInvalidRecurrenceRule = errors.New("recurrence: invalid rule")
	// ErrMissingRecurrence is returned when Expand is called on a
	// non-recurring event.
	ErrMissingRecurrence = errors.New("recurrence: event has no recurrence rule")
)

// MaxCount bounds how many instances a single rule may specify directly,
// guarding against pathological expansion requests.
const MaxCount = 740

// MaxUntilYears bounds how far in the future an until date may reach from
// the event's own start time.
const MaxUntilYears = 10

// DefaultSettings is the reference frame used where a caller has no
// Calendar aggregate to load settings from (for instance a linked busy
// source that isn't itself a first-class calendar). It uses UTC and a
// Sunday week start; rrule-go's own default week start is Monday.
var DefaultSettings = domain.CalendarSettings{Timezone: "UTC", WeekStart: time.Sunday}

var freqMap = map[domain.Frequency]rrule.Frequency{
	domain.FreqYearly:  rrule.YEARLY,
	domain.FreqMonthly: rrule.MONTHLY,
	domain.FreqWeekly:  rrule.WEEKLY,
	domain.FreqDaily:   rrule.DAILY,
}

var weekdayMap = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ValidateRule checks a recurrence rule against the engine's expansion
// limits before it is ever persisted.
func ValidateRule(rule *domain.RecurrenceRule, eventStart time.Time) error {
	if rule == nil {
		return nil
	}
	if rule.Count > MaxCount {
		return ErrInvalidRecurrenceRule
	}
	if rule.Until != nil && rule.Until.After(eventStart.AddDate(MaxUntilYears, 0, 0)) {
		return ErrInvalidRecurrenceRule
	}
	return nil
}

func toROption(rule *domain.RecurrenceRule, dtstart time.Time, weekStart time.Weekday) (*rrule.ROption, error) {
	freq, ok := freqMap[rule.Freq]
	if !ok {
		return nil, ErrInvalidRecurrenceRule
	}

	wkst, ok := weekdayMap[weekStart]
	if !ok {
		return nil, ErrInvalidRecurrenceRule
	}

	opt := &rrule.ROption{
		Freq:     freq,
		Dtstart:  dtstart,
		Interval: rule.Interval,
		Wkst:     wkst,
	}
	if opt.Interval <= 0 {
		opt.Interval = 1
	}
	if rule.Count > 0 {
		opt.Count = rule.Count
	}
	if rule.Until != nil {
		opt.Until = *rule.Until
	}
	for _, wd := range rule.ByWeekday {
		rw, ok := weekdayMap[wd.Weekday]
		if !ok {
			return nil, ErrInvalidRecurrenceRule
		}
		if wd.N != 0 {
			rw = rw.Nth(wd.N)
		}
		opt.Byweekday = append(opt.Byweekday, rw)
	}
	opt.Bymonthday = append(opt.Bymonthday, rule.ByMonthDay...)
	opt.Bysetpos = append(opt.Bysetpos, rule.BySetPos...)

	return opt, nil
}

// Expand produces the busy instances of a recurring event that overlap the
// given window, per the windowing convention: an occurrence starting at s
// is included when s falls in [window.Start, window.End - duration). The
// event's dtstart and the search bounds are interpreted in the calendar's
// own timezone (so DST transitions are applied by the zone, not skipped by
// a fixed UTC reference), and the rule's week-start follows the calendar's
// settings rather than rrule-go's Monday default.
func Expand(event *domain.CalendarEvent, window timeline.TimeSpan, settings domain.CalendarSettings) ([]timeline.Instance, error) {
	rule := event.Recurrence()
	if rule == nil {
		return nil, ErrMissingRecurrence
	}

	loc, err := settings.Location()
	if err != nil {
		return nil, domain.ErrInvalidTimezone
	}

	dtstart := time.UnixMilli(event.StartTimeMs()).In(loc)
	opt, err := toROption(rule, dtstart, settings.WeekStart)
	if err != nil {
		return nil, err
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, ErrInvalidRecurrenceRule
	}

	durationMs := event.DurationMs()
	searchEnd := time.UnixMilli(window.EndMs - durationMs - 1).In(loc)
	searchStart := time.UnixMilli(window.StartMs).In(loc)

	occurrences := r.Between(searchStart, searchEnd, true)

	exdates := make(map[int64]struct{}, len(event.ExdatesMs()))
	for _, ms := range event.ExdatesMs() {
		exdates[ms] = struct{}{}
	}

	instances := make([]timeline.Instance, 0, len(occurrences))
	for _, t := range occurrences {
		startMs := t.UnixMilli()
		if _, excluded := exdates[startMs]; excluded {
			continue
		}
		instances = append(instances, timeline.Instance{
			StartMs: startMs,
			EndMs:   startMs + durationMs,
			Busy:    event.Busy(),
		})
	}

	return instances, nil
}

// ExceptionMap maps a recurring event's ID to the set of original start
// times (ms) that have been overridden by a standalone exception event.
type ExceptionMap map[string]map[int64]struct{}

// BuildExceptionMap scans a set of events for exceptions (events carrying a
// RecurringEventID) and indexes their OriginalStartTimeMs by parent ID.
func BuildExceptionMap(events []*domain.CalendarEvent) ExceptionMap {
	m := make(ExceptionMap)
	for _, e := range events {
		if !e.IsException() {
			continue
		}
		parentID := e.RecurringEventID().String()
		if m[parentID] == nil {
			m[parentID] = make(map[int64]struct{})
		}
		m[parentID][*e.OriginalStartTimeMs()] = struct{}{}
	}
	return m
}

// ExpandAndRemoveExceptions expands a recurring event's instances within a
// window and removes any occurrence whose original start time has been
// overridden by a standalone exception event (the exception event itself
// is expected to be merged in separately by the caller).
func ExpandAndRemoveExceptions(event *domain.CalendarEvent, window timeline.TimeSpan, settings domain.CalendarSettings, exceptions ExceptionMap) ([]timeline.Instance, error) {
	all, err := Expand(event, window, settings)
	if err != nil {
		return nil, err
	}

	overridden := exceptions[event.ID().String()]
	if len(overridden) == 0 {
		return all, nil
	}

	out := make([]timeline.Instance, 0, len(all))
	for _, inst := range all {
		if _, skip := overridden[inst.StartMs]; skip {
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}
