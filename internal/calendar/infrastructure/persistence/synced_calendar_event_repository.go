package persistence

import (
	"context"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SyncedCalendarEventRepository implements domain.SyncedCalendarEventRepository.
type SyncedCalendarEventRepository struct {
	conn database.Connection
}

// NewSyncedCalendarEventRepository creates a SyncedCalendarEventRepository.
func NewSyncedCalendarEventRepository(conn database.Connection) *SyncedCalendarEventRepository {
	return &SyncedCalendarEventRepository{conn: conn}
}

// Save upserts a synced_calendar_events row.
func (r *SyncedCalendarEventRepository) Save(ctx context.Context, sce *domain.SyncedCalendarEvent) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO synced_calendar_events (
			id, synced_calendar_id, event_id, external_event_id, etag, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET external_event_id = $4, etag = $5, updated_at = $7
	`,
		sce.ID(), sce.SyncedCalendarID(), sce.EventID(), sce.ExternalEventID(), sce.ETag(),
		sce.CreatedAt(), sce.UpdatedAt(),
	)
	return err
}

// FindByEventAndSyncedCalendar loads the link between a local event and one
// of its synced-calendar mirrors, if a push has already happened.
func (r *SyncedCalendarEventRepository) FindByEventAndSyncedCalendar(ctx context.Context, eventID, syncedCalendarID uuid.UUID) (*domain.SyncedCalendarEvent, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, synced_calendar_id, event_id, external_event_id, etag, created_at, updated_at
		FROM synced_calendar_events
		WHERE event_id = $1 AND synced_calendar_id = $2
	`, eventID, syncedCalendarID)

	var (
		id, syncedCalendarIDCol, eventIDCol uuid.UUID
		externalEventID, etag               string
		createdAt, updatedAt                time.Time
	)
	err := row.Scan(&id, &syncedCalendarIDCol, &eventIDCol, &externalEventID, &etag, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return domain.RehydrateSyncedCalendarEvent(id, syncedCalendarIDCol, eventIDCol, externalEventID, etag, createdAt, updatedAt), nil
}

// Delete removes a synced event link.
func (r *SyncedCalendarEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM synced_calendar_events WHERE id = $1`, id)
	return err
}
