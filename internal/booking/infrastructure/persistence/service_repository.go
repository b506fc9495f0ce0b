package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nitro-scheduler/nitro/internal/booking/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ServiceRepository implements domain.ServiceRepository.
type ServiceRepository struct {
	conn database.Connection
}

// NewServiceRepository creates a ServiceRepository.
func NewServiceRepository(conn database.Connection) *ServiceRepository {
	return &ServiceRepository{conn: conn}
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func decodeMetadata(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save upserts a services row.
func (r *ServiceRepository) Save(ctx context.Context, service *domain.Service) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	metadata, err := encodeMetadata(service.Metadata())
	if err != nil {
		return err
	}
	_, err = exec.Exec(ctx, `
		INSERT INTO services (id, account_id, name, multi_person, round_robin_algorithm, group_max_count, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = $3, multi_person = $4, round_robin_algorithm = $5, group_max_count = $6, metadata = $7, updated_at = $9
	`, service.ID(), service.AccountID(), service.Name(), string(service.MultiPerson()),
		string(service.RoundRobinAlgorithm()), service.GroupMaxCount(), metadata, service.CreatedAt(), service.UpdatedAt())
	return err
}

// FindByID loads a service by id.
func (r *ServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, account_id, name, multi_person, round_robin_algorithm, group_max_count, metadata, created_at, updated_at
		FROM services WHERE id = $1
	`, id)

	var (
		sid, accountID        uuid.UUID
		name, mode, algo      string
		groupMaxCount         int
		metadataRaw           []byte
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&sid, &accountID, &name, &mode, &algo, &groupMaxCount, &metadataRaw, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	metadata, err := decodeMetadata(metadataRaw)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateService(sid, accountID, name, domain.MultiPersonMode(mode), domain.RoundRobinAlgorithm(algo), groupMaxCount, metadata, createdAt, updatedAt), nil
}

// Delete removes a service row.
func (r *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}
