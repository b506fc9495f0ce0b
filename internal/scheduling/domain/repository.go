package domain

import (
	"context"

	"github.com/google/uuid"
)

// ScheduleRepository persists Schedule aggregates.
type ScheduleRepository interface {
	Save(ctx context.Context, schedule *Schedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
