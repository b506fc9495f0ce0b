package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/identity/domain"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
)

// UserIntegrationRepository implements domain.UserIntegrationRepository.
type UserIntegrationRepository struct {
	conn database.Connection
}

// NewUserIntegrationRepository creates a UserIntegrationRepository.
func NewUserIntegrationRepository(conn database.Connection) *UserIntegrationRepository {
	return &UserIntegrationRepository{conn: conn}
}

// Save upserts a user_integrations row.
func (r *UserIntegrationRepository) Save(ctx context.Context, integration *domain.UserIntegration) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO user_integrations (id, user_id, provider, refresh_token, base_url, username, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			refresh_token = $4, base_url = $5, username = $6, password = $7, updated_at = $9
	`, integration.ID(), integration.UserID(), string(integration.Provider()), integration.RefreshToken(),
		integration.BaseURL(), integration.Username(), integration.Password(), integration.CreatedAt(), integration.UpdatedAt())
	return err
}

// FindByID loads a user integration by id.
func (r *UserIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UserIntegration, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, user_id, provider, refresh_token, base_url, username, password, created_at, updated_at
		FROM user_integrations WHERE id = $1
	`, id)
	return scanUserIntegration(row)
}

// ListByUser lists every integration a user has connected.
func (r *UserIntegrationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserIntegration, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT id, user_id, provider, refresh_token, base_url, username, password, created_at, updated_at
		FROM user_integrations WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.UserIntegration
	for rows.Next() {
		integration, err := scanUserIntegrationRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, integration)
	}
	return out, rows.Err()
}

// Delete removes a user integration by id.
func (r *UserIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM user_integrations WHERE id = $1`, id)
	return err
}

func scanUserIntegration(row database.Row) (*domain.UserIntegration, error) {
	return scanUserIntegrationRow(row)
}

func scanUserIntegrationRow(row database.Row) (*domain.UserIntegration, error) {
	var (
		id, userID                             uuid.UUID
		provider, refreshToken                  string
		baseURL, username, password             string
		createdAt, updatedAt                    time.Time
	)
	err := row.Scan(&id, &userID, &provider, &refreshToken, &baseURL, &username, &password, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	entity := shareddomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return domain.RehydrateUserIntegration(entity, userID, domain.IntegrationProvider(provider), refreshToken, baseURL, username, password), nil
}
