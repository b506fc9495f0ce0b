// Package persistence adapts the reminder pipeline's repositories to the
// shared database.Connection abstraction.
package persistence

import (
	"context"

	"github.com/nitro-scheduler/nitro/internal/reminder/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ReminderRepository implements domain.ReminderRepository against `reminders`.
type ReminderRepository struct {
	conn database.Connection
}

// NewReminderRepository creates a ReminderRepository.
func NewReminderRepository(conn database.Connection) *ReminderRepository {
	return &ReminderRepository{conn: conn}
}

// InsertBatch bulk-inserts newly-expanded reminder rows one statement per
// row inside the caller's transaction, rather than hand-rolling a
// multi-row VALUES builder.
func (r *ReminderRepository) InsertBatch(ctx context.Context, reminders []domain.Reminder) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, rem := range reminders {
		_, err := exec.Exec(ctx, `
			INSERT INTO reminders (event_uid, account_id, remind_at, version, identifier)
			VALUES ($1, $2, $3, $4, $5)
		`, rem.EventID, rem.AccountID, rem.RemindAtMs, rem.Version, rem.Identifier)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllBefore atomically claims every reminder due before cutoffMs via
// a single DELETE ... RETURNING, so concurrent dispatcher instances never
// observe the same row twice.
func (r *ReminderRepository) DeleteAllBefore(ctx context.Context, cutoffMs int64) ([]domain.Reminder, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		DELETE FROM reminders WHERE remind_at < $1
		RETURNING event_uid, account_id, remind_at, version, identifier
	`, cutoffMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reminder
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(&rem.EventID, &rem.AccountID, &rem.RemindAtMs, &rem.Version, &rem.Identifier); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// EventReminderVersionRepository implements domain.EventReminderVersionRepository.
type EventReminderVersionRepository struct {
	conn database.Connection
}

// NewEventReminderVersionRepository creates an EventReminderVersionRepository.
func NewEventReminderVersionRepository(conn database.Connection) *EventReminderVersionRepository {
	return &EventReminderVersionRepository{conn: conn}
}

// GetOrInit returns the event's current version, creating a version-0 row
// on first call.
func (r *EventReminderVersionRepository) GetOrInit(ctx context.Context, eventID uuid.UUID) (int64, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		INSERT INTO event_reminder_versions (event_uid, version) VALUES ($1, 0)
		ON CONFLICT (event_uid) DO UPDATE SET event_uid = event_reminder_versions.event_uid
		RETURNING version
	`, eventID)

	var version int64
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// Get returns the event's current version, or (0, false) if never expanded.
func (r *EventReminderVersionRepository) Get(ctx context.Context, eventID uuid.UUID) (int64, bool, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT version FROM event_reminder_versions WHERE event_uid = $1`, eventID)

	var version int64
	if err := row.Scan(&version); err != nil {
		if database.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return version, true, nil
}

// ExpansionJobRepository implements domain.ExpansionJobRepository against
// `calendar_event_reminder_generation_jobs`.
type ExpansionJobRepository struct {
	conn database.Connection
}

// NewExpansionJobRepository creates an ExpansionJobRepository.
func NewExpansionJobRepository(conn database.Connection) *ExpansionJobRepository {
	return &ExpansionJobRepository{conn: conn}
}

// DequeueDue atomically removes and returns every job due at or before beforeMs.
func (r *ExpansionJobRepository) DequeueDue(ctx context.Context, beforeMs int64) ([]domain.ExpansionJob, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		DELETE FROM calendar_event_reminder_generation_jobs WHERE timestamp <= $1
		RETURNING event_uid, timestamp, version
	`, beforeMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExpansionJob
	for rows.Next() {
		var job domain.ExpansionJob
		if err := rows.Scan(&job.EventID, &job.TimestampMs, &job.Version); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Enqueue upserts the follow-up job for one event, replacing any existing
// pending job so an event never accumulates duplicate jobs.
func (r *ExpansionJobRepository) Enqueue(ctx context.Context, job domain.ExpansionJob) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO calendar_event_reminder_generation_jobs (event_uid, timestamp, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_uid) DO UPDATE SET timestamp = $2, version = $3
	`, job.EventID, job.TimestampMs, job.Version)
	return err
}
