package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/identity/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// CreateUserCommand registers a new user under an account.
type CreateUserCommand struct {
	AccountID  uuid.UUID
	ExternalID string
	Metadata   map[string]string
}

func (CreateUserCommand) CommandName() string { return "identity.create_user" }

// UpdateUserMetadataCommand replaces a user's metadata.
type UpdateUserMetadataCommand struct {
	AccountID uuid.UUID
	UserID    uuid.UUID
	Metadata  map[string]string
}

func (UpdateUserMetadataCommand) CommandName() string { return "identity.update_user_metadata" }

// DeleteUserCommand removes a user.
type DeleteUserCommand struct {
	AccountID uuid.UUID
	UserID    uuid.UUID
}

func (DeleteUserCommand) CommandName() string { return "identity.delete_user" }

// UserHandler implements the user CRUD command set.
type UserHandler struct {
	users domain.UserRepository
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users domain.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// HandleCreate creates and persists a new user.
func (h *UserHandler) HandleCreate(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	user, err := domain.NewUser(cmd.AccountID, cmd.ExternalID, cmd.Metadata)
	if err != nil {
		return nil, apperror.BadClientData("identity: invalid user", err)
	}
	if err := h.users.Save(ctx, user); err != nil {
		return nil, apperror.Internal("identity: saving user", err)
	}
	return user, nil
}

// HandleUpdateMetadata replaces a user's metadata.
func (h *UserHandler) HandleUpdateMetadata(ctx context.Context, cmd UpdateUserMetadataCommand) error {
	user, err := h.users.FindByID(ctx, cmd.AccountID, cmd.UserID)
	if err != nil {
		return apperror.Internal("identity: loading user", err)
	}
	if user == nil {
		return apperror.NotFound("identity: user not found", domain.ErrUserNotFound)
	}
	user.SetMetadata(cmd.Metadata)
	if err := h.users.Save(ctx, user); err != nil {
		return apperror.Internal("identity: saving user", err)
	}
	return nil
}

// HandleDelete removes a user.
func (h *UserHandler) HandleDelete(ctx context.Context, cmd DeleteUserCommand) error {
	if err := h.users.Delete(ctx, cmd.AccountID, cmd.UserID); err != nil {
		return apperror.Internal("identity: deleting user", err)
	}
	return nil
}
