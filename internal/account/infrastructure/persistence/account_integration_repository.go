package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/account/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
)

// AccountIntegrationRepository implements domain.AccountIntegrationRepository.
type AccountIntegrationRepository struct {
	conn database.Connection
}

// NewAccountIntegrationRepository creates an AccountIntegrationRepository.
func NewAccountIntegrationRepository(conn database.Connection) *AccountIntegrationRepository {
	return &AccountIntegrationRepository{conn: conn}
}

// Save upserts an account_integrations row.
func (r *AccountIntegrationRepository) Save(ctx context.Context, integration domain.AccountIntegration) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO account_integrations (account_id, provider, client_id, client_secret)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, provider) DO UPDATE SET client_id = $3, client_secret = $4
	`, integration.AccountID, integration.Provider, integration.ClientID, integration.ClientSecret)
	return err
}

// FindByAccountAndProvider looks up one account's OAuth client registration.
func (r *AccountIntegrationRepository) FindByAccountAndProvider(ctx context.Context, accountID uuid.UUID, provider string) (*domain.AccountIntegration, bool, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT account_id, provider, client_id, client_secret
		FROM account_integrations WHERE account_id = $1 AND provider = $2
	`, accountID, provider)

	var integration domain.AccountIntegration
	err := row.Scan(&integration.AccountID, &integration.Provider, &integration.ClientID, &integration.ClientSecret)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &integration, true, nil
}

// ListByAccount lists every provider registration for an account.
func (r *AccountIntegrationRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.AccountIntegration, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT account_id, provider, client_id, client_secret
		FROM account_integrations WHERE account_id = $1
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AccountIntegration
	for rows.Next() {
		var integration domain.AccountIntegration
		if err := rows.Scan(&integration.AccountID, &integration.Provider, &integration.ClientID, &integration.ClientSecret); err != nil {
			return nil, err
		}
		out = append(out, integration)
	}
	return out, rows.Err()
}
