package domain

import (
	"time"

	sharedDomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/google/uuid"
)

// EventGroup is a label applied across events in a calendar, used to tag a
// set of related events (e.g. a multi-day trip) for bulk display or search.
type EventGroup struct {
	sharedDomain.BaseEntity
	accountID  uuid.UUID
	calendarID uuid.UUID
	name       string
	metadata   map[string]string
}

// NewEventGroup creates an event group.
func NewEventGroup(accountID, calendarID uuid.UUID, name string, metadata map[string]string) *EventGroup {
	return &EventGroup{
		BaseEntity: sharedDomain.NewBaseEntity(),
		accountID:  accountID,
		calendarID: calendarID,
		name:       name,
		metadata:   metadata,
	}
}

// RehydrateEventGroup recreates an event group from persisted state.
func RehydrateEventGroup(id, accountID, calendarID uuid.UUID, name string, metadata map[string]string, createdAt, updatedAt time.Time) *EventGroup {
	return &EventGroup{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		accountID:  accountID,
		calendarID: calendarID,
		name:       name,
		metadata:   metadata,
	}
}

func (g *EventGroup) AccountID() uuid.UUID        { return g.accountID }
func (g *EventGroup) CalendarID() uuid.UUID       { return g.calendarID }
func (g *EventGroup) Name() string                { return g.name }
func (g *EventGroup) Metadata() map[string]string { return g.metadata }

// Rename updates the group's display name.
func (g *EventGroup) Rename(name string) {
	g.name = name
	g.Touch()
}
