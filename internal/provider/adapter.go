// Package provider defines the External Provider Adapter Contract: the
// interface every calendar provider integration (Google, Outlook, CalDAV,
// or a third-party plugin) must implement so outbound sync and
// inbound free/busy aggregation can treat them uniformly.
package provider

import (
	"context"
	"time"
)

// RemoteCalendar is one calendar as reported by a provider's list call.
type RemoteCalendar struct {
	ID       string
	Name     string
	ReadOnly bool
}

// BusyBlock is one provider-reported busy interval, in UTC.
type BusyBlock struct {
	Start time.Time
	End   time.Time
}

// RemoteEvent is the provider-agnostic shape of an event pushed to, or
// pulled from, a provider.
type RemoteEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Busy        bool
}

// Adapter is the contract every provider integration implements. All
// methods are best-effort from the caller's perspective: a
// failing adapter call after a local commit is logged, never rolled back.
type Adapter interface {
	// ListCalendars lists the calendars visible to the given integration's
	// credentials.
	ListCalendars(ctx context.Context, integrationID string) ([]RemoteCalendar, error)
	// FreeBusy reports the provider's busy blocks for one calendar within
	// a window.
	FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]BusyBlock, error)
	// CreateEvent creates a remote event and returns its provider-assigned id.
	CreateEvent(ctx context.Context, calendarID string, event RemoteEvent) (externalEventID string, err error)
	// UpdateEvent updates a previously created remote event.
	UpdateEvent(ctx context.Context, calendarID, externalEventID string, event RemoteEvent) error
	// DeleteEvent deletes a previously created remote event.
	DeleteEvent(ctx context.Context, calendarID, externalEventID string) error
}

// Registry resolves a provider name to its configured Adapter, used by the
// outbound sync use-cases to dispatch per SyncedCalendar.Provider.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty provider Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register associates a provider name (e.g. "google", "outlook", "caldav")
// with its Adapter implementation.
func (r *Registry) Register(name string, adapter Adapter) {
	r.adapters[name] = adapter
}

// Resolve returns the adapter for a provider name, or (nil, false) if no
// built-in or plugin adapter is registered for it.
func (r *Registry) Resolve(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}
