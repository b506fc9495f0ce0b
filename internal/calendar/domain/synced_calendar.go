package domain

import (
	"time"

	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

// SyncProvider identifies the upstream calendar service a SyncedCalendar
// mirrors events to and from.
type SyncProvider string

const (
	ProviderGoogle  SyncProvider = "google"
	ProviderOutlook SyncProvider = "outlook"
	ProviderCalDAV  SyncProvider = "caldav"
)

// SyncDirection controls whether a synced calendar only pulls external
// events in, only pushes local events out, or does both.
type SyncDirection string

const (
	SyncInbound  SyncDirection = "inbound"
	SyncOutbound SyncDirection = "outbound"
	SyncBoth     SyncDirection = "both"
)

// SyncedCalendar links a local Calendar to an external provider's calendar,
// driving the outbound-sync subscriber and the inbound free/busy merge.
type SyncedCalendar struct {
	sharedDomain.BaseEntity
	accountID          uuid.UUID
	calendarID         uuid.UUID
	userIntegrationID  uuid.UUID
	provider           SyncProvider
	externalCalendarID string
	direction          SyncDirection
	lastSyncedAt       *time.Time
	syncToken          string
}

// NewSyncedCalendar links a calendar to an external provider calendar.
func NewSyncedCalendar(accountID, calendarID, userIntegrationID uuid.UUID, provider SyncProvider, externalCalendarID string, direction SyncDirection) *SyncedCalendar {
	return &SyncedCalendar{
		BaseEntity:         sharedDomain.NewBaseEntity(),
		accountID:          accountID,
		calendarID:         calendarID,
		userIntegrationID:  userIntegrationID,
		provider:           provider,
		externalCalendarID: externalCalendarID,
		direction:          direction,
	}
}

// RehydrateSyncedCalendar recreates a synced calendar link from persisted state.
func RehydrateSyncedCalendar(
	id, accountID, calendarID, userIntegrationID uuid.UUID,
	provider SyncProvider, externalCalendarID string, direction SyncDirection,
	lastSyncedAt *time.Time, syncToken string,
	createdAt, updatedAt time.Time,
) *SyncedCalendar {
	return &SyncedCalendar{
		BaseEntity:         sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		accountID:          accountID,
		calendarID:         calendarID,
		userIntegrationID:  userIntegrationID,
		provider:           provider,
		externalCalendarID: externalCalendarID,
		direction:          direction,
		lastSyncedAt:       lastSyncedAt,
		syncToken:          syncToken,
	}
}

func (s *SyncedCalendar) AccountID() uuid.UUID          { return s.accountID }
func (s *SyncedCalendar) CalendarID() uuid.UUID         { return s.calendarID }
func (s *SyncedCalendar) UserIntegrationID() uuid.UUID  { return s.userIntegrationID }
func (s *SyncedCalendar) Provider() SyncProvider        { return s.provider }
func (s *SyncedCalendar) ExternalCalendarID() string    { return s.externalCalendarID }
func (s *SyncedCalendar) Direction() SyncDirection       { return s.direction }
func (s *SyncedCalendar) LastSyncedAt() *time.Time      { return s.lastSyncedAt }
func (s *SyncedCalendar) SyncToken() string             { return s.syncToken }

// SupportsOutbound reports whether local-event changes on this calendar
// should be pushed to the provider.
func (s *SyncedCalendar) SupportsOutbound() bool {
	return s.direction == SyncOutbound || s.direction == SyncBoth
}

// SupportsInbound reports whether this link contributes to free/busy and
// event listing from the external provider.
func (s *SyncedCalendar) SupportsInbound() bool {
	return s.direction == SyncInbound || s.direction == SyncBoth
}

// MarkSynced records a completed sync pass and its resumption token.
func (s *SyncedCalendar) MarkSynced(at time.Time, syncToken string) {
	s.lastSyncedAt = &at
	s.syncToken = syncToken
	s.Touch()
}

// SyncedCalendarEvent maps a local CalendarEvent to its mirrored external
// provider event, so outbound sync can decide create vs. update vs. delete.
type SyncedCalendarEvent struct {
	sharedDomain.BaseEntity
	syncedCalendarID uuid.UUID
	eventID          uuid.UUID
	externalEventID  string
	etag             string
}

// NewSyncedCalendarEvent links a local event to its external counterpart.
func NewSyncedCalendarEvent(syncedCalendarID, eventID uuid.UUID, externalEventID, etag string) *SyncedCalendarEvent {
	return &SyncedCalendarEvent{
		BaseEntity:       sharedDomain.NewBaseEntity(),
		syncedCalendarID: syncedCalendarID,
		eventID:          eventID,
		externalEventID:  externalEventID,
		etag:             etag,
	}
}

// RehydrateSyncedCalendarEvent recreates a synced event link from persisted state.
func RehydrateSyncedCalendarEvent(id, syncedCalendarID, eventID uuid.UUID, externalEventID, etag string, createdAt, updatedAt time.Time) *SyncedCalendarEvent {
	return &SyncedCalendarEvent{
		BaseEntity:       sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		syncedCalendarID: syncedCalendarID,
		eventID:          eventID,
		externalEventID:  externalEventID,
		etag:             etag,
	}
}

func (e *SyncedCalendarEvent) SyncedCalendarID() uuid.UUID { return e.syncedCalendarID }
func (e *SyncedCalendarEvent) EventID() uuid.UUID          { return e.eventID }
func (e *SyncedCalendarEvent) ExternalEventID() string     { return e.externalEventID }
func (e *SyncedCalendarEvent) ETag() string                { return e.etag }

// UpdateRemoteState records the provider's event id/etag after a push.
func (e *SyncedCalendarEvent) UpdateRemoteState(externalEventID, etag string) {
	e.externalEventID = externalEventID
	e.etag = etag
	e.Touch()
}
