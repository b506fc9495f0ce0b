package persistence

import (
	"context"
	"time"

	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ServiceResourceRepository implements domain.ServiceResourceRepository.
type ServiceResourceRepository struct {
	conn database.Connection
}

// NewServiceResourceRepository creates a ServiceResourceRepository.
func NewServiceResourceRepository(conn database.Connection) *ServiceResourceRepository {
	return &ServiceResourceRepository{conn: conn}
}

// Save upserts a service_users row.
func (r *ServiceResourceRepository) Save(ctx context.Context, res *domain.ServiceResource) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	avail := res.Availability()
	var availResourceID *uuid.UUID
	if avail.Kind != domain.AvailabilityEmpty {
		id := avail.ResourceID
		availResourceID = &id
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO service_users (
			id, service_id, user_id, availability_kind, availability_resource_id,
			buffer_before_ms, buffer_after_ms, closest_booking_ms, furthest_booking_ms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (service_id, user_id) DO UPDATE SET
			availability_kind = $4, availability_resource_id = $5,
			buffer_before_ms = $6, buffer_after_ms = $7,
			closest_booking_ms = $8, furthest_booking_ms = $9, updated_at = $11
	`, res.ID(), res.ServiceID(), res.UserID(), string(avail.Kind), availResourceID,
		res.BufferBeforeMs(), res.BufferAfterMs(), res.ClosestBookingMs(), res.FurthestBookingMs(),
		res.CreatedAt(), res.UpdatedAt())
	return err
}

// FindByServiceAndUser loads a service's member resource for one user.
func (r *ServiceResourceRepository) FindByServiceAndUser(ctx context.Context, serviceID, userID uuid.UUID) (*domain.ServiceResource, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, selectServiceResourceColumns+` WHERE service_id = $1 AND user_id = $2`, serviceID, userID)
	return scanServiceResource(row)
}

// ListByService lists every member resource of a service.
func (r *ServiceResourceRepository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]*domain.ServiceResource, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, selectServiceResourceColumns+` WHERE service_id = $1`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ServiceResource
	for rows.Next() {
		res, err := scanServiceResourceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Delete removes a member resource from a service.
func (r *ServiceResourceRepository) Delete(ctx context.Context, serviceID, userID uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM service_users WHERE service_id = $1 AND user_id = $2`, serviceID, userID)
	return err
}

const selectServiceResourceColumns = `
	SELECT id, service_id, user_id, availability_kind, availability_resource_id,
		buffer_before_ms, buffer_after_ms, closest_booking_ms, furthest_booking_ms, created_at, updated_at
	FROM service_users`

func scanServiceResource(row database.Row) (*domain.ServiceResource, error) { return scanServiceResourceRow(row) }

func scanServiceResourceRow(row scannable) (*domain.ServiceResource, error) {
	var (
		id, serviceID, userID uuid.UUID
		availKind             string
		availResourceID       *uuid.UUID
		bufferBefore, bufferAfter, closestBooking int64
		furthestBooking       *int64
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&id, &serviceID, &userID, &availKind, &availResourceID,
		&bufferBefore, &bufferAfter, &closestBooking, &furthestBooking, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	avail := domain.Availability{Kind: domain.AvailabilityKind(availKind)}
	if availResourceID != nil {
		avail.ResourceID = *availResourceID
	}

	return domain.RehydrateServiceResource(id, serviceID, userID, avail, bufferBefore, bufferAfter, closestBooking, furthestBooking, createdAt, updatedAt), nil
}
