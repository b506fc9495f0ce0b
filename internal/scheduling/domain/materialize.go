package domain

import (
	"time"

	"github.com/nitro-scheduler/nitro/internal/timeline"
)

// MaterializeAvailable walks a window day by day in the schedule's
// timezone and returns the instances where the schedule says the user is
// *available* (the inverse of what the booking solver needs is produced
// by the caller via timeline.Complement, since a schedule's rules describe
// available time, not busy time).
func MaterializeAvailable(s *Schedule, window timeline.TimeSpan) ([]timeline.Instance, error) {
	loc, err := s.Location()
	if err != nil {
		return nil, err
	}

	start := window.Start().In(loc)
	end := window.End().In(loc)

	var out []timeline.Instance
	for day := dayStart(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		for _, rule := range s.rules {
			if !ruleAppliesToDay(rule, day) {
				continue
			}
			for _, interval := range rule.Intervals {
				instStart := day.Add(time.Duration(interval.StartMinute) * time.Minute)
				instEnd := day.Add(time.Duration(interval.EndMinute) * time.Minute)
				if instEnd.Before(window.Start()) || !instStart.Before(window.End()) {
					continue
				}
				out = append(out, timeline.Instance{
					StartMs: instStart.UnixMilli(),
					EndMs:   instEnd.UnixMilli(),
					Busy:    true,
				})
			}
		}
	}

	return out, nil
}

// AvailableToFreeBusy converts a schedule's available intervals within a
// window into a busy/free pair suitable for the booking solver: available
// time is "free", everything else in the window is "busy".
func AvailableToFreeBusy(s *Schedule, window timeline.TimeSpan) (free []timeline.Instance, busy []timeline.Instance, err error) {
	available, err := MaterializeAvailable(s, window)
	if err != nil {
		return nil, nil, err
	}
	mergedAvailable := timeline.CompatibleMerge(available)
	free = mergedAvailable
	busy = timeline.Complement(mergedAvailable, window)
	return free, busy, nil
}

func ruleAppliesToDay(rule ScheduleRule, day time.Time) bool {
	switch rule.Kind {
	case RuleWeekDay:
		return rule.Weekday == day.Weekday()
	case RuleDate:
		return rule.Date == day.Format("2006-01-02")
	default:
		return false
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
