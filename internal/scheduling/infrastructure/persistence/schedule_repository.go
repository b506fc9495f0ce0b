// Package persistence adapts ScheduleRepository to the shared
// database.Connection abstraction.
package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nitro-scheduler/nitro/internal/scheduling/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ScheduleRepository implements domain.ScheduleRepository.
type ScheduleRepository struct {
	conn database.Connection
}

// NewScheduleRepository creates a ScheduleRepository.
func NewScheduleRepository(conn database.Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

type ruleDTO struct {
	Kind      string                 `json:"kind"`
	Weekday   int                    `json:"weekday,omitempty"`
	Date      string                 `json:"date,omitempty"`
	Intervals []domain.LocalInterval `json:"intervals"`
}

func encodeRules(rules []domain.ScheduleRule) ([]byte, error) {
	dtos := make([]ruleDTO, 0, len(rules))
	for _, r := range rules {
		dtos = append(dtos, ruleDTO{
			Kind:      string(r.Kind),
			Weekday:   int(r.Weekday),
			Date:      r.Date,
			Intervals: r.Intervals,
		})
	}
	return json.Marshal(dtos)
}

func decodeRules(raw []byte) ([]domain.ScheduleRule, error) {
	var dtos []ruleDTO
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &dtos); err != nil {
			return nil, err
		}
	}
	rules := make([]domain.ScheduleRule, 0, len(dtos))
	for _, d := range dtos {
		rules = append(rules, domain.ScheduleRule{
			Kind:      domain.RuleKind(d.Kind),
			Weekday:   time.Weekday(d.Weekday),
			Date:      d.Date,
			Intervals: d.Intervals,
		})
	}
	return rules, nil
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func decodeMetadata(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save upserts a schedules row.
func (r *ScheduleRepository) Save(ctx context.Context, schedule *domain.Schedule) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rules, err := encodeRules(schedule.Rules())
	if err != nil {
		return err
	}
	metadata, err := encodeMetadata(schedule.Metadata())
	if err != nil {
		return err
	}
	_, err = exec.Exec(ctx, `
		INSERT INTO schedules (id, account_id, user_id, timezone, rules, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET timezone = $4, rules = $5, metadata = $6, updated_at = $8
	`, schedule.ID(), schedule.AccountID(), schedule.UserID(), schedule.Timezone(), rules, metadata, schedule.CreatedAt(), schedule.UpdatedAt())
	return err
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, selectScheduleColumns+` WHERE id = $1`, id)
	return scanSchedule(row)
}

// ListByUser lists every schedule owned by a user.
func (r *ScheduleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Schedule, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, selectScheduleColumns+` WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Schedule
	for rows.Next() {
		s, err := scanScheduleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a schedule row.
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	return err
}

const selectScheduleColumns = `
	SELECT id, account_id, user_id, timezone, rules, metadata, created_at, updated_at
	FROM schedules`

type scannable interface {
	Scan(dest ...any) error
}

func scanSchedule(row database.Row) (*domain.Schedule, error) { return scanScheduleRow(row) }

func scanScheduleRow(row scannable) (*domain.Schedule, error) {
	var (
		id, accountID, userID uuid.UUID
		timezone              string
		rulesRaw, metadataRaw []byte
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&id, &accountID, &userID, &timezone, &rulesRaw, &metadataRaw, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rules, err := decodeRules(rulesRaw)
	if err != nil {
		return nil, err
	}
	metadata, err := decodeMetadata(metadataRaw)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateSchedule(id, accountID, userID, timezone, rules, metadata, createdAt, updatedAt), nil
}
