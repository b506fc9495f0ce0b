package persistence

import (
	"context"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SyncedCalendarRepository implements domain.SyncedCalendarRepository.
type SyncedCalendarRepository struct {
	conn database.Connection
}

// NewSyncedCalendarRepository creates a SyncedCalendarRepository.
func NewSyncedCalendarRepository(conn database.Connection) *SyncedCalendarRepository {
	return &SyncedCalendarRepository{conn: conn}
}

// Save upserts a synced_calendars row.
func (r *SyncedCalendarRepository) Save(ctx context.Context, sc *domain.SyncedCalendar) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO synced_calendars (
			id, account_id, calendar_id, user_integration_id, provider,
			external_calendar_id, direction, last_synced_at, sync_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			direction = $7, last_synced_at = $8, sync_token = $9, updated_at = $11
	`,
		sc.ID(), sc.AccountID(), sc.CalendarID(), sc.UserIntegrationID(), string(sc.Provider()),
		sc.ExternalCalendarID(), string(sc.Direction()), sc.LastSyncedAt(), sc.SyncToken(),
		sc.CreatedAt(), sc.UpdatedAt(),
	)
	return err
}

// FindByID loads a synced calendar link by id.
func (r *SyncedCalendarRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SyncedCalendar, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, selectSyncedCalendarColumns+` WHERE id = $1`, id)
	return scanSyncedCalendar(row)
}

// FindByCalendar lists every synced-calendar link for a calendar.
func (r *SyncedCalendarRepository) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*domain.SyncedCalendar, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, selectSyncedCalendarColumns+` WHERE calendar_id = $1`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SyncedCalendar
	for rows.Next() {
		sc, err := scanSyncedCalendarRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Delete removes a synced calendar link.
func (r *SyncedCalendarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM synced_calendars WHERE id = $1`, id)
	return err
}

const selectSyncedCalendarColumns = `
	SELECT id, account_id, calendar_id, user_integration_id, provider,
		external_calendar_id, direction, last_synced_at, sync_token, created_at, updated_at
	FROM synced_calendars`

func scanSyncedCalendar(row database.Row) (*domain.SyncedCalendar, error) {
	return scanSyncedCalendarRow(row)
}

func scanSyncedCalendarRow(row scannable) (*domain.SyncedCalendar, error) {
	var (
		id, accountID, calendarID, userIntegrationID uuid.UUID
		provider, externalCalendarID, direction      string
		lastSyncedAt                                 *time.Time
		syncToken                                    string
		createdAt, updatedAt                          time.Time
	)
	err := row.Scan(&id, &accountID, &calendarID, &userIntegrationID, &provider,
		&externalCalendarID, &direction, &lastSyncedAt, &syncToken, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return domain.RehydrateSyncedCalendar(
		id, accountID, calendarID, userIntegrationID,
		domain.SyncProvider(provider), externalCalendarID, domain.SyncDirection(direction),
		lastSyncedAt, syncToken, createdAt, updatedAt,
	), nil
}
