// Package domain holds the reminder pipeline's three tables and their
// repository contracts: the materialized reminder rows, the per-event
// version counter, and the self-driving expansion job queue.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// Reminder is one materialized, due-at-a-specific-instant reminder row.
// Consumed atomically by the dispatcher stage.
type Reminder struct {
	EventID    uuid.UUID
	AccountID  uuid.UUID
	RemindAtMs int64
	Version    int64
	Identifier string
}

// EventReminderVersion tracks the monotonic reminder-version of one event.
type EventReminderVersion struct {
	EventID uuid.UUID
	Version int64
}

// ExpansionJob is the self-driving follow-up queue entry: "re-expand this
// event's reminders no later than TimestampMs".
type ExpansionJob struct {
	EventID     uuid.UUID
	TimestampMs int64
	Version     int64
}

// ReminderRepository persists materialized reminder rows.
type ReminderRepository interface {
	// InsertBatch bulk-inserts newly-expanded reminder rows.
	InsertBatch(ctx context.Context, reminders []Reminder) error
	// DeleteAllBefore atomically removes and returns every row with
	// RemindAtMs < cutoffMs. Must be a single DELETE ... RETURNING (or
	// equivalent) so concurrent dispatchers never double-claim a row.
	DeleteAllBefore(ctx context.Context, cutoffMs int64) ([]Reminder, error)
}

// EventReminderVersionRepository persists the per-event version counter.
type EventReminderVersionRepository interface {
	// GetOrInit returns the event's current version, creating it at 0 if absent.
	GetOrInit(ctx context.Context, eventID uuid.UUID) (int64, error)
	// Get returns the current version, or (0, false) if the event has never been expanded.
	Get(ctx context.Context, eventID uuid.UUID) (int64, bool, error)
}

// ExpansionJobRepository persists the self-driving expansion job queue.
type ExpansionJobRepository interface {
	// DequeueDue returns and removes every job with TimestampMs <= beforeMs.
	DequeueDue(ctx context.Context, beforeMs int64) ([]ExpansionJob, error)
	// Enqueue inserts (or replaces) the follow-up job for one event.
	Enqueue(ctx context.Context, job ExpansionJob) error
}
