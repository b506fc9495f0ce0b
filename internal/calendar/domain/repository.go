package domain

import (
	"context"

	"github.com/google/uuid"
)

// CalendarRepository persists Calendar aggregates.
type CalendarRepository interface {
	Save(ctx context.Context, cal *Calendar) error
	FindByID(ctx context.Context, id uuid.UUID) (*Calendar, error)
	FindByUserAndKey(ctx context.Context, userID uuid.UUID, key string) (*Calendar, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Calendar, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventFilter expresses the search DSL against calendar_events.
type EventFilter struct {
	AccountID    uuid.UUID
	CalendarIDs  []uuid.UUID
	IDs          *IDFieldFilter
	ExternalIDs  *StringFieldFilter
	ParentID     *IDFieldFilter
	StartTimeGte *int64
	StartTimeLte *int64
	Metadata     map[string]string
	Sort         *SortSpec
	Limit        int
}

// IDFieldFilter mirrors the ID-field operator set from the search DSL.
type IDFieldFilter struct {
	Eq     *uuid.UUID
	Ne     *uuid.UUID
	In     []uuid.UUID
	Exists *bool
}

// StringFieldFilter mirrors the string-field operator set from the search DSL.
type StringFieldFilter struct {
	Eq     *string
	Ne     *string
	In     []string
	Exists *bool
}

// SortSpec is the optional sort clause of a search body.
type SortSpec struct {
	Field     string
	Ascending bool
}

// CalendarEventRepository persists CalendarEvent aggregates.
type CalendarEventRepository interface {
	Save(ctx context.Context, event *CalendarEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*CalendarEvent, error)
	FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*CalendarEvent, error)
	FindByCalendarWindow(ctx context.Context, calendarID uuid.UUID, startMs, endMs int64) ([]*CalendarEvent, error)
	FindExceptionsByParent(ctx context.Context, parentID uuid.UUID) ([]*CalendarEvent, error)
	Search(ctx context.Context, filter EventFilter) ([]*CalendarEvent, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventGroupRepository persists EventGroup aggregates.
type EventGroupRepository interface {
	Save(ctx context.Context, group *EventGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*EventGroup, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SyncedCalendarRepository persists SyncedCalendar links.
type SyncedCalendarRepository interface {
	Save(ctx context.Context, sc *SyncedCalendar) error
	FindByID(ctx context.Context, id uuid.UUID) (*SyncedCalendar, error)
	FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*SyncedCalendar, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SyncedCalendarEventRepository persists SyncedCalendarEvent links.
type SyncedCalendarEventRepository interface {
	Save(ctx context.Context, sce *SyncedCalendarEvent) error
	FindByEventAndSyncedCalendar(ctx context.Context, eventID, syncedCalendarID uuid.UUID) (*SyncedCalendarEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
