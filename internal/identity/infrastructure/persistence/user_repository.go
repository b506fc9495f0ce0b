package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/identity/domain"
	shareddomain "github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
)

// UserRepository implements domain.UserRepository.
type UserRepository struct {
	conn database.Connection
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(conn database.Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Save upserts a users row.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	metadata, err := json.Marshal(user.Metadata())
	if err != nil {
		return err
	}
	_, err = exec.Exec(ctx, `
		INSERT INTO users (id, account_id, external_id, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET external_id = $3, metadata = $4, updated_at = $6
	`, user.ID(), user.AccountID(), user.ExternalID(), metadata, user.CreatedAt(), user.UpdatedAt())
	return err
}

// FindByID loads a user scoped to accountID.
func (r *UserRepository) FindByID(ctx context.Context, accountID, userID uuid.UUID) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, account_id, external_id, metadata, created_at, updated_at
		FROM users WHERE account_id = $1 AND id = $2
	`, accountID, userID)
	return scanUser(row)
}

// FindByExternalID looks up a user by the account's own identifier for them.
func (r *UserRepository) FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT id, account_id, external_id, metadata, created_at, updated_at
		FROM users WHERE account_id = $1 AND external_id = $2
	`, accountID, externalID)
	return scanUser(row)
}

// FindAccountIDByUserID resolves the account that owns userID.
func (r *UserRepository) FindAccountIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT account_id FROM users WHERE id = $1`, userID)
	var accountID uuid.UUID
	if err := row.Scan(&accountID); err != nil {
		if database.IsNoRows(err) {
			return uuid.Nil, domain.ErrUserNotFound
		}
		return uuid.Nil, err
	}
	return accountID, nil
}

// Delete removes a user scoped to accountID.
func (r *UserRepository) Delete(ctx context.Context, accountID, userID uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM users WHERE account_id = $1 AND id = $2`, accountID, userID)
	return err
}

func scanUser(row database.Row) (*domain.User, error) {
	var (
		id, accountID        uuid.UUID
		externalID           string
		metadataRaw          []byte
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &accountID, &externalID, &metadataRaw, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	metadata := map[string]string{}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return nil, err
		}
	}

	entity := shareddomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return domain.RehydrateUser(entity, accountID, externalID, metadata), nil
}
