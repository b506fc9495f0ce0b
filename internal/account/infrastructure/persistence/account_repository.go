package persistence

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/account/domain"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"crypto/rsa"
)

// AccountRepository implements domain.AccountRepository.
type AccountRepository struct {
	conn database.Connection
}

// NewAccountRepository creates an AccountRepository.
func NewAccountRepository(conn database.Connection) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// Save upserts an accounts row.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO accounts (id, secret_api_key, public_key_pem, webhook_url, webhook_signing_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			public_key_pem = $3, webhook_url = $4, webhook_signing_key = $5, updated_at = $7
	`, account.ID(), account.SecretAPIKey(), account.PublicKeyPEM(), account.Webhook().URL, account.Webhook().SigningKey,
		account.CreatedAt(), account.UpdatedAt())
	return err
}

// FindByID loads an account by id.
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, secret_api_key, public_key_pem, webhook_url, webhook_signing_key, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id)
	return scanAccount(row)
}

// FindBySecretAPIKey looks an account up by its admin API key.
func (r *AccountRepository) FindBySecretAPIKey(ctx context.Context, secretAPIKey string) (*domain.Account, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, secret_api_key, public_key_pem, webhook_url, webhook_signing_key, created_at, updated_at
		FROM accounts WHERE secret_api_key = $1
	`, secretAPIKey)
	return scanAccount(row)
}

// Delete removes an account by id.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func scanAccount(row database.Row) (*domain.Account, error) {
	var (
		id                            uuid.UUID
		secretAPIKey, publicKeyPEM    string
		webhookURL, webhookSigningKey string
		createdAt, updatedAt          time.Time
	)
	err := row.Scan(&id, &secretAPIKey, &publicKeyPEM, &webhookURL, &webhookSigningKey, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	var publicKey *rsa.PublicKey
	if publicKeyPEM != "" {
		publicKey, err = parsePublicKeyPEM(publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("account: parsing stored public key: %w", err)
		}
	}

	entity := shareddomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	webhook := domain.WebhookConfig{URL: webhookURL, SigningKey: webhookSigningKey}
	return domain.RehydrateAccount(entity, secretAPIKey, publicKeyPEM, publicKey, webhook), nil
}

func parsePublicKeyPEM(pemStr string) (*rsa.PublicKey, error) {
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
