// Package persistence adapts the Booking bounded context's repositories
// to the shared database.Connection abstraction, including the reservation
// counter's atomic upsert/conditional-decrement contract.
package persistence

import (
	"context"

	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ReservationCounter implements domain.ReservationCounter against
// `service_reservations(service_uid, timestamp, count)`.
type ReservationCounter struct {
	conn database.Connection
}

// NewReservationCounter creates a ReservationCounter.
func NewReservationCounter(conn database.Connection) *ReservationCounter {
	return &ReservationCounter{conn: conn}
}

// Increment performs the atomic upsert `count = count + 1` and returns the
// new count, so the caller never observes a torn check-then-increment.
func (r *ReservationCounter) Increment(ctx context.Context, serviceID uuid.UUID, timestampMs int64) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		INSERT INTO service_reservations (service_uid, timestamp, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (service_uid, timestamp) DO UPDATE SET count = service_reservations.count + 1
		RETURNING count
	`, serviceID, timestampMs)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Decrement performs `count = count - 1 WHERE count > 0`; decrementing a
// seat that is already at zero (or whose row doesn't exist) is a no-op.
func (r *ReservationCounter) Decrement(ctx context.Context, serviceID uuid.UUID, timestampMs int64) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		UPDATE service_reservations SET count = count - 1
		WHERE service_uid = $1 AND timestamp = $2 AND count > 0
	`, serviceID, timestampMs)
	return err
}

// Get returns the current count, or 0 if no row exists.
func (r *ReservationCounter) Get(ctx context.Context, serviceID uuid.UUID, timestampMs int64) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT count FROM service_reservations WHERE service_uid = $1 AND timestamp = $2
	`, serviceID, timestampMs)

	var count int
	if err := row.Scan(&count); err != nil {
		if database.IsNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
