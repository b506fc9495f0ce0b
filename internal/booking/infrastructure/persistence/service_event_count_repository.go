package persistence

import (
	"context"

	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ServiceEventCountRepository implements domain.ServiceEventCountRepository
// by counting calendar_events rows tagged with a service_id, for the
// equal-distribution round-robin algorithm's rolling window.
type ServiceEventCountRepository struct {
	conn database.Connection
}

// NewServiceEventCountRepository creates a ServiceEventCountRepository.
func NewServiceEventCountRepository(conn database.Connection) *ServiceEventCountRepository {
	return &ServiceEventCountRepository{conn: conn}
}

// CountRecentServiceEvents counts events a user has hosted for any service
// on the account since sinceMs.
func (r *ServiceEventCountRepository) CountRecentServiceEvents(ctx context.Context, accountID, userID uuid.UUID, sinceMs int64) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT COUNT(*) FROM calendar_events
		WHERE account_id = $1 AND user_id = $2 AND service_id IS NOT NULL AND start_time >= $3
	`, accountID, userID, sinceMs)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
