// Package domain holds the account bounded context: the tenant boundary
// every other bounded context is scoped under. An Account owns a secret
// API key (admin auth), a public key used to verify the JWTs it issues to
// its end users, and an optional webhook endpoint reminders are pushed to.
package domain

import (
	"crypto/rsa"
	"errors"

	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
)

var (
	// ErrAccountNotFound indicates the requested account was not found.
	ErrAccountNotFound = errors.New("account: not found")
	// ErrInvalidPublicKey indicates a malformed PEM-encoded public key.
	ErrInvalidPublicKey = errors.New("account: invalid public key")
)

// WebhookConfig is the endpoint reminders are pushed to for an account.
type WebhookConfig struct {
	URL        string
	SigningKey string
}

// Configured reports whether a webhook endpoint has been set.
func (w WebhookConfig) Configured() bool { return w.URL != "" }

// Account is the tenant aggregate root.
type Account struct {
	shareddomain.BaseEntity
	secretAPIKey  string
	publicKeyPEM  string
	publicKey     *rsa.PublicKey
	webhook       WebhookConfig
}

// NewAccount creates a new Account with a freshly generated secret API key.
func NewAccount(secretAPIKey string) *Account {
	return &Account{
		BaseEntity:   shareddomain.NewBaseEntity(),
		secretAPIKey: secretAPIKey,
	}
}

// RehydrateAccount reconstructs an Account from persisted state. publicKey
// may be nil when publicKeyPEM is empty (no key configured yet).
func RehydrateAccount(entity shareddomain.BaseEntity, secretAPIKey, publicKeyPEM string, publicKey *rsa.PublicKey, webhook WebhookConfig) *Account {
	return &Account{
		BaseEntity:   entity,
		secretAPIKey: secretAPIKey,
		publicKeyPEM: publicKeyPEM,
		publicKey:    publicKey,
		webhook:      webhook,
	}
}

func (a *Account) SecretAPIKey() string     { return a.secretAPIKey }
func (a *Account) PublicKeyPEM() string     { return a.publicKeyPEM }
func (a *Account) PublicKey() *rsa.PublicKey { return a.publicKey }
func (a *Account) Webhook() WebhookConfig   { return a.webhook }

// SetPublicKey replaces the account's JWT verification key.
func (a *Account) SetPublicKey(pem string, key *rsa.PublicKey) {
	a.publicKeyPEM = pem
	a.publicKey = key
	a.Touch()
}

// SetWebhook replaces the account's webhook endpoint.
func (a *Account) SetWebhook(cfg WebhookConfig) {
	a.webhook = cfg
	a.Touch()
}
