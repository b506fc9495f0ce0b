package persistence

import (
	"context"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// EventGroupRepository implements domain.EventGroupRepository.
type EventGroupRepository struct {
	conn database.Connection
}

// NewEventGroupRepository creates an EventGroupRepository.
func NewEventGroupRepository(conn database.Connection) *EventGroupRepository {
	return &EventGroupRepository{conn: conn}
}

// Save upserts an events_groups row.
func (r *EventGroupRepository) Save(ctx context.Context, group *domain.EventGroup) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	metadata, err := encodeMetadata(group.Metadata())
	if err != nil {
		return err
	}
	_, err = exec.Exec(ctx, `
		INSERT INTO events_groups (id, account_id, calendar_id, name, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET name = $4, metadata = $5, updated_at = $7
	`, group.ID(), group.AccountID(), group.CalendarID(), group.Name(), metadata, group.CreatedAt(), group.UpdatedAt())
	return err
}

// FindByID loads an event group by id.
func (r *EventGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventGroup, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, account_id, calendar_id, name, metadata, created_at, updated_at
		FROM events_groups WHERE id = $1
	`, id)

	var (
		gid, accountID, calendarID uuid.UUID
		name                       string
		metadataRaw                []byte
		createdAt, updatedAt       time.Time
	)
	if err := row.Scan(&gid, &accountID, &calendarID, &name, &metadataRaw, &createdAt, &updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	metadata, err := decodeMetadata(metadataRaw)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateEventGroup(gid, accountID, calendarID, name, metadata, createdAt, updatedAt), nil
}

// Delete removes an event group.
func (r *EventGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM events_groups WHERE id = $1`, id)
	return err
}
