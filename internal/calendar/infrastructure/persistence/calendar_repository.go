// Package persistence adapts the Calendar bounded context's repositories
// to the shared database.Connection abstraction, so the same queries run
// unmodified against Postgres or SQLite.
package persistence

import (
	"context"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// CalendarRepository implements domain.CalendarRepository against a
// driver-agnostic database.Connection.
type CalendarRepository struct {
	conn database.Connection
}

// NewCalendarRepository creates a CalendarRepository.
func NewCalendarRepository(conn database.Connection) *CalendarRepository {
	return &CalendarRepository{conn: conn}
}

// Save upserts a calendar row.
func (r *CalendarRepository) Save(ctx context.Context, cal *domain.Calendar) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	metadata, err := encodeMetadata(cal.Metadata())
	if err != nil {
		return err
	}

	_, err = exec.Exec(ctx, `
		INSERT INTO calendars (id, account_id, user_id, name, key, timezone, week_start, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = $4, key = $5, timezone = $6, week_start = $7, metadata = $8, updated_at = $10
	`,
		cal.ID(), cal.AccountID(), cal.UserID(), cal.Name(), nullableString(cal.Key()),
		cal.Settings().Timezone, int(cal.Settings().WeekStart), metadata, cal.CreatedAt(), cal.UpdatedAt(),
	)
	return err
}

// FindByID loads a calendar by id, returning (nil, nil) if absent.
func (r *CalendarRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Calendar, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, account_id, user_id, name, key, timezone, week_start, metadata, created_at, updated_at
		FROM calendars WHERE id = $1
	`, id)
	return scanCalendar(row)
}

// FindByUserAndKey loads the calendar with the given (user_id, key) pair.
func (r *CalendarRepository) FindByUserAndKey(ctx context.Context, userID uuid.UUID, key string) (*domain.Calendar, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, account_id, user_id, name, key, timezone, week_start, metadata, created_at, updated_at
		FROM calendars WHERE user_id = $1 AND key = $2
	`, userID, key)
	return scanCalendar(row)
}

// ListByUser lists every calendar owned by a user.
func (r *CalendarRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Calendar, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT id, account_id, user_id, name, key, timezone, week_start, metadata, created_at, updated_at
		FROM calendars WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Calendar
	for rows.Next() {
		cal, err := scanCalendarRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cal)
	}
	return out, rows.Err()
}

// Delete removes a calendar row; the store cascades to owned events, groups
// and synced-calendar links.
func (r *CalendarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM calendars WHERE id = $1`, id)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCalendar(row database.Row) (*domain.Calendar, error) {
	return scanCalendarRows(row)
}

func scanCalendarRows(row scannable) (*domain.Calendar, error) {
	var (
		id, accountID, userID uuid.UUID
		name                  string
		key                   *string
		timezone              string
		weekStart             int
		metadata              []byte
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&id, &accountID, &userID, &name, &key, &timezone, &weekStart, &metadata, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	meta, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}

	settings := domain.CalendarSettings{Timezone: timezone, WeekStart: time.Weekday(weekStart)}
	keyVal := ""
	if key != nil {
		keyVal = *key
	}

	return domain.RehydrateCalendar(id, accountID, userID, name, keyVal, settings, meta, createdAt, updatedAt), nil
}
