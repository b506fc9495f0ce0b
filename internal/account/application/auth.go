package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/account/domain"
	"github.com/nitro-scheduler/nitro/internal/account/infrastructure/cache"
	"github.com/nitro-scheduler/nitro/internal/identity/application"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// APIKeyResolver resolves the x-api-key admin header to an account id,
// fronted by a short-TTL cache so auth is not a Postgres round trip on
// every request.
type APIKeyResolver struct {
	accounts domain.AccountRepository
	cache    *cache.APIKeyCache
}

// NewAPIKeyResolver creates an APIKeyResolver.
func NewAPIKeyResolver(accounts domain.AccountRepository, keyCache *cache.APIKeyCache) *APIKeyResolver {
	return &APIKeyResolver{accounts: accounts, cache: keyCache}
}

// Resolve returns the account id owning apiKey.
func (r *APIKeyResolver) Resolve(ctx context.Context, apiKey string) (uuid.UUID, error) {
	if id, ok := r.cache.Get(ctx, apiKey); ok {
		return id, nil
	}

	account, err := r.accounts.FindBySecretAPIKey(ctx, apiKey)
	if err != nil {
		return uuid.Nil, apperror.Internal("account: resolving api key", err)
	}
	if account == nil {
		return uuid.Nil, apperror.UnidentifiableClient("account: unknown api key", domain.ErrAccountNotFound)
	}

	r.cache.Set(ctx, apiKey, account.ID())
	return account.ID(), nil
}

// BearerResolver verifies a user-facing bearer JWT against the issuing
// account's configured public key.
type BearerResolver struct {
	accounts domain.AccountRepository
}

// NewBearerResolver creates a BearerResolver.
func NewBearerResolver(accounts domain.AccountRepository) *BearerResolver {
	return &BearerResolver{accounts: accounts}
}

// Resolve verifies tokenString as issued by accountID, returning the
// caller's user id and granted policy.
func (r *BearerResolver) Resolve(ctx context.Context, accountID uuid.UUID, tokenString string) (*application.VerifiedToken, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, apperror.Internal("account: loading account", err)
	}
	if account == nil || account.PublicKey() == nil {
		return nil, apperror.Unauthorized("account: no public key configured", domain.ErrAccountNotFound)
	}

	verified, err := application.VerifyToken(tokenString, account.PublicKey())
	if err != nil {
		return nil, apperror.Unauthorized("account: invalid bearer token", err)
	}
	return verified, nil
}
