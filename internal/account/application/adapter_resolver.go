package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/account/domain"
	identitydomain "github.com/nitro-scheduler/nitro/internal/identity/domain"
	"github.com/nitro-scheduler/nitro/internal/provider"
	"github.com/nitro-scheduler/nitro/internal/provider/caldav"
	"github.com/nitro-scheduler/nitro/internal/provider/google"
	"github.com/nitro-scheduler/nitro/internal/provider/outlook"
	"golang.org/x/oauth2"
)

var (
	googleEndpoint = oauth2.Endpoint{
		AuthURL:  "https://accounts.google.com/o/oauth2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	}
	outlookEndpoint = oauth2.Endpoint{
		AuthURL:  "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	}
)

// AdapterResolver implements internal/calendar/application's AdapterResolver,
// building a live provider.Adapter from a stored UserIntegration. It is
// process-wide (not scoped to a single account): the owning account is
// resolved per call, since the outbound-sync consumer reacts to events
// from every tenant on the same eventbus.
type AdapterResolver struct {
	users               identitydomain.UserRepository
	userIntegrations    identitydomain.UserIntegrationRepository
	accountIntegrations domain.AccountIntegrationRepository
	plugins             *provider.Registry
}

// NewAdapterResolver creates a process-wide AdapterResolver. plugins may be
// nil; it is consulted only for integration providers other than the
// built-in google/outlook/caldav set, so a deployment with no provider
// plugins configured never touches it.
func NewAdapterResolver(users identitydomain.UserRepository, userIntegrations identitydomain.UserIntegrationRepository, accountIntegrations domain.AccountIntegrationRepository, plugins *provider.Registry) *AdapterResolver {
	return &AdapterResolver{users: users, userIntegrations: userIntegrations, accountIntegrations: accountIntegrations, plugins: plugins}
}

// ResolveAdapter builds the provider.Adapter for a stored user integration.
func (r *AdapterResolver) ResolveAdapter(ctx context.Context, userIntegrationID uuid.UUID) (provider.Adapter, bool, error) {
	integration, err := r.userIntegrations.FindByID(ctx, userIntegrationID)
	if err != nil {
		return nil, false, err
	}
	if integration == nil {
		return nil, false, nil
	}

	if integration.Provider() == identitydomain.IntegrationCalDAV {
		return caldav.NewAdapter(integration.BaseURL(), integration.Username(), integration.Password()), true, nil
	}

	accountID, err := r.users.FindAccountIDByUserID(ctx, integration.UserID())
	if err != nil {
		return nil, false, err
	}

	switch integration.Provider() {
	case identitydomain.IntegrationGoogle:
		cfg, ok, err := r.oauthConfig(ctx, accountID, "google", googleEndpoint)
		if err != nil || !ok {
			return nil, false, err
		}
		tokenSource := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: integration.RefreshToken()})
		return google.NewAdapter(ctx, tokenSource), true, nil

	case identitydomain.IntegrationOutlook:
		cfg, ok, err := r.oauthConfig(ctx, accountID, "outlook", outlookEndpoint)
		if err != nil || !ok {
			return nil, false, err
		}
		tokenSource := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: integration.RefreshToken()})
		return outlook.NewAdapter(ctx, tokenSource), true, nil

	default:
		if r.plugins != nil {
			if adapter, ok := r.plugins.Resolve(string(integration.Provider())); ok {
				return adapter, true, nil
			}
		}
		return nil, false, fmt.Errorf("account: unknown integration provider %q", integration.Provider())
	}
}

func (r *AdapterResolver) oauthConfig(ctx context.Context, accountID uuid.UUID, providerName string, endpoint oauth2.Endpoint) (*oauth2.Config, bool, error) {
	reg, ok, err := r.accountIntegrations.FindByAccountAndProvider(ctx, accountID, providerName)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &oauth2.Config{
		ClientID:     reg.ClientID,
		ClientSecret: reg.ClientSecret,
		Endpoint:     endpoint,
	}, true, nil
}
