package persistence

import (
	"context"
	"time"

	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// BusyCalendarLinkRepository implements domain.BusyCalendarLinkRepository
// against `service_user_busy_calendars`.
type BusyCalendarLinkRepository struct {
	conn database.Connection
}

// NewBusyCalendarLinkRepository creates a BusyCalendarLinkRepository.
func NewBusyCalendarLinkRepository(conn database.Connection) *BusyCalendarLinkRepository {
	return &BusyCalendarLinkRepository{conn: conn}
}

// Save upserts a busy-calendar link.
func (r *BusyCalendarLinkRepository) Save(ctx context.Context, link *domain.BusyCalendarLink) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO service_user_busy_calendars (id, service_id, user_id, synced_calendar_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, link.ID(), link.ServiceID(), link.UserID(), link.SyncedCalendarID(), link.CreatedAt(), link.UpdatedAt())
	return err
}

// ListByServiceAndUser lists the extra busy calendars linked to a service member.
func (r *BusyCalendarLinkRepository) ListByServiceAndUser(ctx context.Context, serviceID, userID uuid.UUID) ([]*domain.BusyCalendarLink, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT id, service_id, user_id, synced_calendar_id, created_at, updated_at
		FROM service_user_busy_calendars WHERE service_id = $1 AND user_id = $2
	`, serviceID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.BusyCalendarLink
	for rows.Next() {
		var (
			id, sid, uid, syncedID uuid.UUID
			createdAt, updatedAt   time.Time
		)
		if err := rows.Scan(&id, &sid, &uid, &syncedID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		out = append(out, domain.RehydrateBusyCalendarLink(id, sid, uid, syncedID, createdAt, updatedAt))
	}
	return out, rows.Err()
}

// Delete removes a busy-calendar link.
func (r *BusyCalendarLinkRepository) Delete(ctx context.Context, serviceID, userID, syncedCalendarID uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		DELETE FROM service_user_busy_calendars WHERE service_id = $1 AND user_id = $2 AND synced_calendar_id = $3
	`, serviceID, userID, syncedCalendarID)
	return err
}
