// Package application hosts account use cases: bootstrapping a new tenant,
// resolving API keys to accounts, and satisfying the cross-context
// resolver interfaces (webhook delivery, outbound provider adapters) that
// other bounded contexts depend on without importing this package's types.
package application

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/account/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// ErrInvalidSecretCode is returned when the bootstrap caller's secret code
// does not match CREATE_ACCOUNT_SECRET_CODE.
var ErrInvalidSecretCode = errors.New("account: invalid create-account secret code")

// BootstrapHandler creates new accounts, gated by a shared deployment
// secret so that account creation is not a public endpoint.
type BootstrapHandler struct {
	accounts   domain.AccountRepository
	secretCode string
}

// NewBootstrapHandler creates a BootstrapHandler.
func NewBootstrapHandler(accounts domain.AccountRepository, secretCode string) *BootstrapHandler {
	return &BootstrapHandler{accounts: accounts, secretCode: secretCode}
}

// CreateAccountCommand requests a new account be bootstrapped.
type CreateAccountCommand struct {
	SecretCode string
}

// Handle creates a new account with a freshly generated secret API key.
func (h *BootstrapHandler) Handle(ctx context.Context, cmd CreateAccountCommand) (*domain.Account, error) {
	if cmd.SecretCode != h.secretCode {
		return nil, apperror.Unauthorized("account: bootstrap denied", ErrInvalidSecretCode)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, apperror.Internal("account: generating api key", err)
	}

	account := domain.NewAccount(apiKey)
	if err := h.accounts.Save(ctx, account); err != nil {
		return nil, apperror.Internal("account: saving new account", err)
	}
	return account, nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "sk_" + hex.EncodeToString(buf), nil
}

// PublicKeyHandler manages an account's configured JWT public key.
type PublicKeyHandler struct {
	accounts domain.AccountRepository
}

// NewPublicKeyHandler creates a PublicKeyHandler.
func NewPublicKeyHandler(accounts domain.AccountRepository) *PublicKeyHandler {
	return &PublicKeyHandler{accounts: accounts}
}

// SetPublicKeyCommand updates an account's JWT verification key.
type SetPublicKeyCommand struct {
	AccountID    uuid.UUID
	PublicKeyPEM string
}

// Handle validates and stores a new public key for the account.
func (h *PublicKeyHandler) Handle(ctx context.Context, cmd SetPublicKeyCommand) error {
	key, err := ParsePublicKeyPEM(cmd.PublicKeyPEM)
	if err != nil {
		return apperror.BadClientData("account: invalid public key", err)
	}

	account, err := h.accounts.FindByID(ctx, cmd.AccountID)
	if err != nil {
		return apperror.Internal("account: loading account", err)
	}
	if account == nil {
		return apperror.NotFound("account: not found", domain.ErrAccountNotFound)
	}

	account.SetPublicKey(cmd.PublicKeyPEM, key)
	if err := h.accounts.Save(ctx, account); err != nil {
		return apperror.Internal("account: saving public key", err)
	}
	return nil
}

// SetWebhookCommand updates an account's webhook endpoint.
type SetWebhookCommand struct {
	AccountID  uuid.UUID
	URL        string
	SigningKey string
}

// HandleSetWebhook replaces the account's webhook configuration.
func (h *PublicKeyHandler) HandleSetWebhook(ctx context.Context, cmd SetWebhookCommand) error {
	account, err := h.accounts.FindByID(ctx, cmd.AccountID)
	if err != nil {
		return apperror.Internal("account: loading account", err)
	}
	if account == nil {
		return apperror.NotFound("account: not found", domain.ErrAccountNotFound)
	}

	account.SetWebhook(domain.WebhookConfig{URL: cmd.URL, SigningKey: cmd.SigningKey})
	if err := h.accounts.Save(ctx, account); err != nil {
		return apperror.Internal("account: saving webhook config", err)
	}
	return nil
}

// ParsePublicKeyPEM validates a PEM-encoded RSA public key.
func ParsePublicKeyPEM(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, domain.ErrInvalidPublicKey
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, domain.ErrInvalidPublicKey
	}
	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, domain.ErrInvalidPublicKey
	}
	return rsaKey, nil
}
