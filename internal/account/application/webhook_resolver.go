package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/account/domain"
)

// WebhookResolver implements internal/webhook's AccountResolver.
type WebhookResolver struct {
	accounts domain.AccountRepository
}

// NewWebhookResolver creates a WebhookResolver.
func NewWebhookResolver(accounts domain.AccountRepository) *WebhookResolver {
	return &WebhookResolver{accounts: accounts}
}

// WebhookConfig returns the account's configured webhook endpoint, if any.
func (r *WebhookResolver) WebhookConfig(ctx context.Context, accountID uuid.UUID) (string, string, bool, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", "", false, err
	}
	if account == nil {
		return "", "", false, nil
	}
	webhook := account.Webhook()
	return webhook.URL, webhook.SigningKey, webhook.Configured(), nil
}
