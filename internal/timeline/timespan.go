// Package timeline implements the half-open-interval arithmetic and the
// busy/free instance algebra that every later scheduling computation is
// built on.
package timeline

import (
	"errors"
	"time"
)

// ErrInvalidTimeSpan is returned when a span's end does not come after its start.
var ErrInvalidTimeSpan = errors.New("timeline: end must be after start")

// TimeSpan is a half-open interval [Start, End) expressed in UTC milliseconds.
type TimeSpan struct {
	StartMs int64
	EndMs   int64
}

// NewTimeSpan builds a TimeSpan from two instants, normalizing both to UTC.
func NewTimeSpan(start, end time.Time) (TimeSpan, error) {
	if !end.After(start) {
		return TimeSpan{}, ErrInvalidTimeSpan
	}
	return TimeSpan{
		StartMs: start.UTC().UnixMilli(),
		EndMs:   end.UTC().UnixMilli(),
	}, nil
}

// FromMillis builds a TimeSpan directly from UTC millisecond endpoints.
func FromMillis(startMs, endMs int64) (TimeSpan, error) {
	if endMs <= startMs {
		return TimeSpan{}, ErrInvalidTimeSpan
	}
	return TimeSpan{StartMs: startMs, EndMs: endMs}, nil
}

// Start returns the span's start instant in UTC.
func (t TimeSpan) Start() time.Time { return time.UnixMilli(t.StartMs).UTC() }

// End returns the span's end instant in UTC.
func (t TimeSpan) End() time.Time { return time.UnixMilli(t.EndMs).UTC() }

// DurationMs returns the span's duration in milliseconds.
func (t TimeSpan) DurationMs() int64 { return t.EndMs - t.StartMs }

// Duration returns the span's duration.
func (t TimeSpan) Duration() time.Duration {
	return time.Duration(t.DurationMs()) * time.Millisecond
}

// Contains reports whether the instant (in UTC ms) falls within [Start, End).
func (t TimeSpan) Contains(instantMs int64) bool {
	return instantMs >= t.StartMs && instantMs < t.EndMs
}

// Overlaps reports whether two half-open intervals share any point.
func (t TimeSpan) Overlaps(other TimeSpan) bool {
	return t.StartMs < other.EndMs && other.StartMs < t.EndMs
}

// GreaterThan is a guard against pathological queries: it reports whether
// the span's duration exceeds maxMs.
func (t TimeSpan) GreaterThan(maxMs int64) bool {
	return t.DurationMs() > maxMs
}

// LocalSpan is a TimeSpan's (start, end) converted into a named zone.
type LocalSpan struct {
	Start time.Time
	End   time.Time
}

// AsLocal converts the span's endpoints into the given IANA zone.
func (t TimeSpan) AsLocal(loc *time.Location) LocalSpan {
	return LocalSpan{
		Start: t.Start().In(loc),
		End:   t.End().In(loc),
	}
}

// Default query-duration caps, per spec section 4.1.
const (
	// MaxEventQuerySpanMs bounds recurrence/free-busy expansion queries (62 days).
	MaxEventQuerySpanMs = int64(62 * 24 * time.Hour / time.Millisecond)
	// MaxBookingQuerySpanMs bounds booking-slot queries (101 days).
	MaxBookingQuerySpanMs = int64(101 * 24 * time.Hour / time.Millisecond)
)
