package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository persists Accounts.
type AccountRepository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindBySecretAPIKey(ctx context.Context, secretAPIKey string) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountIntegration stores an account-level OAuth client registration
// (client id/secret) for a provider, used to mint per-user integrations.
type AccountIntegration struct {
	AccountID    uuid.UUID
	Provider     string
	ClientID     string
	ClientSecret string
}

// AccountIntegrationRepository persists AccountIntegrations.
type AccountIntegrationRepository interface {
	Save(ctx context.Context, integration AccountIntegration) error
	FindByAccountAndProvider(ctx context.Context, accountID uuid.UUID, provider string) (*AccountIntegration, bool, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]AccountIntegration, error)
}
