package domain

import (
	"context"

	"github.com/google/uuid"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
)

// IntegrationProvider names an external calendar provider a user connected.
type IntegrationProvider string

const (
	IntegrationGoogle IntegrationProvider = "google"
	IntegrationOutlook IntegrationProvider = "outlook"
	IntegrationCalDAV  IntegrationProvider = "caldav"
)

// UserIntegration stores the credentials needed to act as a user against
// one external provider: an OAuth refresh token for Google/Outlook, or
// basic-auth credentials for CalDAV.
type UserIntegration struct {
	shareddomain.BaseEntity
	userID       uuid.UUID
	provider     IntegrationProvider
	refreshToken string
	baseURL      string
	username     string
	password     string
}

// NewUserIntegration creates an OAuth-based integration (Google/Outlook).
func NewUserIntegration(userID uuid.UUID, provider IntegrationProvider, refreshToken string) *UserIntegration {
	return &UserIntegration{
		BaseEntity:   shareddomain.NewBaseEntity(),
		userID:       userID,
		provider:     provider,
		refreshToken: refreshToken,
	}
}

// NewCalDAVIntegration creates a basic-auth CalDAV integration.
func NewCalDAVIntegration(userID uuid.UUID, baseURL, username, password string) *UserIntegration {
	return &UserIntegration{
		BaseEntity: shareddomain.NewBaseEntity(),
		userID:     userID,
		provider:   IntegrationCalDAV,
		baseURL:    baseURL,
		username:   username,
		password:   password,
	}
}

// RehydrateUserIntegration reconstructs a UserIntegration from persisted state.
func RehydrateUserIntegration(entity shareddomain.BaseEntity, userID uuid.UUID, provider IntegrationProvider, refreshToken, baseURL, username, password string) *UserIntegration {
	return &UserIntegration{
		BaseEntity:   entity,
		userID:       userID,
		provider:     provider,
		refreshToken: refreshToken,
		baseURL:      baseURL,
		username:     username,
		password:     password,
	}
}

func (i *UserIntegration) UserID() uuid.UUID              { return i.userID }
func (i *UserIntegration) Provider() IntegrationProvider   { return i.provider }
func (i *UserIntegration) RefreshToken() string            { return i.refreshToken }
func (i *UserIntegration) BaseURL() string                 { return i.baseURL }
func (i *UserIntegration) Username() string                { return i.username }
func (i *UserIntegration) Password() string                { return i.password }

// UserIntegrationRepository persists UserIntegrations.
type UserIntegrationRepository interface {
	Save(ctx context.Context, integration *UserIntegration) error
	FindByID(ctx context.Context, id uuid.UUID) (*UserIntegration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserIntegration, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
