// Package domain holds the Schedule aggregate: a user's recurring weekly
// and date-specific availability, expressed as local-time intervals and
// materialized into busy/free timelines in the schedule's own timezone.
package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidInterval        = errors.New("schedule: interval end must be after start")
	ErrOverlappingIntervals   = errors.New("schedule: intervals within a rule must not overlap")
	ErrInvalidScheduleTimezone = errors.New("schedule: invalid IANA timezone")
	ErrScheduleNotFound       = errors.New("schedule: not found")
)

// LocalInterval is a same-day [start, end) pair expressed in minutes since
// midnight, local to the schedule's timezone.
type LocalInterval struct {
	StartMinute int
	EndMinute   int
}

func (i LocalInterval) validate() error {
	if i.EndMinute <= i.StartMinute {
		return ErrInvalidInterval
	}
	return nil
}

// RuleKind distinguishes a recurring weekday rule from a one-off date rule.
type RuleKind string

const (
	RuleWeekDay RuleKind = "weekday"
	RuleDate    RuleKind = "date"
)

// ScheduleRule is one weekday-recurring or one-off date rule, embedded in
// a Schedule (not independently addressable).
type ScheduleRule struct {
	Kind      RuleKind
	Weekday   time.Weekday // valid when Kind == RuleWeekDay
	Date      string       // YYYY-MM-DD, valid when Kind == RuleDate
	Intervals []LocalInterval
}

func (r ScheduleRule) validate() error {
	sorted := append([]LocalInterval{}, r.Intervals...)
	for i, interval := range sorted {
		if err := interval.validate(); err != nil {
			return err
		}
		for j := i + 1; j < len(sorted); j++ {
			if interval.StartMinute < sorted[j].EndMinute && sorted[j].StartMinute < interval.EndMinute {
				return ErrOverlappingIntervals
			}
		}
	}
	return nil
}

// defaultWeekdayRules returns the seven default daily rules (09:00-17:00,
// Sunday through Saturday) a Schedule is seeded with on creation.
func defaultWeekdayRules() []ScheduleRule {
	rules := make([]ScheduleRule, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		rules = append(rules, ScheduleRule{
			Kind:      RuleWeekDay,
			Weekday:   wd,
			Intervals: []LocalInterval{{StartMinute: 9 * 60, EndMinute: 17 * 60}},
		})
	}
	return rules
}

// Schedule is a user's named availability calendar: a timezone plus a set
// of weekday/date rules, used both directly (as a ServiceResource
// availability source) and indirectly (personal scheduling preference).
type Schedule struct {
	sharedDomain.BaseAggregateRoot
	accountID uuid.UUID
	userID    uuid.UUID
	timezone  string
	rules     []ScheduleRule
	metadata  map[string]string
}

// NewSchedule creates a schedule seeded with the seven default weekday rules.
func NewSchedule(accountID, userID uuid.UUID, timezone string, metadata map[string]string) (*Schedule, error) {
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, ErrInvalidScheduleTimezone
	}
	return &Schedule{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		accountID:         accountID,
		userID:            userID,
		timezone:          timezone,
		rules:             defaultWeekdayRules(),
		metadata:          metadata,
	}, nil
}

// RehydrateSchedule recreates a schedule from persisted state.
func RehydrateSchedule(id, accountID, userID uuid.UUID, timezone string, rules []ScheduleRule, metadata map[string]string, createdAt, updatedAt time.Time) *Schedule {
	return &Schedule{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), 0),
		accountID:         accountID,
		userID:            userID,
		timezone:          timezone,
		rules:             rules,
		metadata:          metadata,
	}
}

func (s *Schedule) AccountID() uuid.UUID        { return s.accountID }
func (s *Schedule) UserID() uuid.UUID           { return s.userID }
func (s *Schedule) Timezone() string            { return s.timezone }
func (s *Schedule) Rules() []ScheduleRule        { return s.rules }
func (s *Schedule) Metadata() map[string]string { return s.metadata }

// Location loads the schedule's IANA zone.
func (s *Schedule) Location() (*time.Location, error) {
	return time.LoadLocation(s.timezone)
}

// SetRules replaces the schedule's rule set, validating every rule's
// intervals are well-formed and non-overlapping.
func (s *Schedule) SetRules(rules []ScheduleRule) error {
	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			return err
		}
	}
	s.rules = rules
	s.Touch()
	return nil
}

// UpdateTimezone changes the timezone the rules are interpreted in.
func (s *Schedule) UpdateTimezone(timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return ErrInvalidScheduleTimezone
	}
	s.timezone = timezone
	s.Touch()
	return nil
}
