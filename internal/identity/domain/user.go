// Package domain holds the identity bounded context: the Users an account
// manages and the external-provider integrations those users have
// connected (Google, Outlook, CalDAV), used by both the booking availability
// pipeline and the outbound provider sync pipeline.
package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
)

var (
	// ErrUserNotFound indicates the requested user was not found.
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrEmptyExternalID indicates a user was created without an external id.
	ErrEmptyExternalID = errors.New("identity: external id cannot be empty")
)

// User is an account's end customer: the person who owns calendars,
// schedules, and bookings. ExternalID is the account-supplied identifier
// (not a nitro-scheduler concept) used to look a user up from the owning
// application.
type User struct {
	shareddomain.BaseEntity
	accountID  uuid.UUID
	externalID string
	metadata   map[string]string
}

// NewUser creates a new User for accountID, identified in the owning
// application by externalID.
func NewUser(accountID uuid.UUID, externalID string, metadata map[string]string) (*User, error) {
	if externalID == "" {
		return nil, ErrEmptyExternalID
	}
	return &User{
		BaseEntity: shareddomain.NewBaseEntity(),
		accountID:  accountID,
		externalID: externalID,
		metadata:   metadata,
	}, nil
}

// RehydrateUser reconstructs a User from persisted state.
func RehydrateUser(entity shareddomain.BaseEntity, accountID uuid.UUID, externalID string, metadata map[string]string) *User {
	return &User{BaseEntity: entity, accountID: accountID, externalID: externalID, metadata: metadata}
}

func (u *User) AccountID() uuid.UUID          { return u.accountID }
func (u *User) ExternalID() string            { return u.externalID }
func (u *User) Metadata() map[string]string   { return u.metadata }
func (u *User) SetMetadata(m map[string]string) { u.metadata = m }

// UserRepository persists Users.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, accountID, userID uuid.UUID) (*User, error)
	// FindAccountIDByUserID resolves the owning account without requiring
	// it be known up front, for cross-account lookups such as the
	// outbound-sync adapter resolver walking from a UserIntegration back
	// to the OAuth client credentials registered for its account.
	FindAccountIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*User, error)
	Delete(ctx context.Context, accountID, userID uuid.UUID) error
}
