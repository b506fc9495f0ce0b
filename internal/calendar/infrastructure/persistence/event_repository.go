package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// CalendarEventRepository implements domain.CalendarEventRepository.
// Recurrence rules, exdates, and reminders are stored as JSON columns: they
// are opaque substructures of a single event row, not independently
// queried, so a normalized schema would add joins without adding query
// power.
type CalendarEventRepository struct {
	conn database.Connection
}

// NewCalendarEventRepository creates a CalendarEventRepository.
func NewCalendarEventRepository(conn database.Connection) *CalendarEventRepository {
	return &CalendarEventRepository{conn: conn}
}

type recurrenceRuleDTO struct {
	Freq       string  `json:"freq"`
	Interval   int     `json:"interval"`
	Count      int     `json:"count,omitempty"`
	UntilMs    *int64  `json:"until_ms,omitempty"`
	ByWeekday  []int   `json:"by_weekday,omitempty"`
	ByWeekdayN []int   `json:"by_weekday_n,omitempty"`
	ByMonthDay []int   `json:"by_month_day,omitempty"`
	BySetPos   []int   `json:"by_set_pos,omitempty"`
}

func encodeRecurrence(r *domain.RecurrenceRule) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	dto := recurrenceRuleDTO{
		Freq:       string(r.Freq),
		Interval:   r.Interval,
		Count:      r.Count,
		ByMonthDay: r.ByMonthDay,
		BySetPos:   r.BySetPos,
	}
	if r.Until != nil {
		ms := r.Until.UnixMilli()
		dto.UntilMs = &ms
	}
	for _, wd := range r.ByWeekday {
		dto.ByWeekday = append(dto.ByWeekday, int(wd.Weekday))
		dto.ByWeekdayN = append(dto.ByWeekdayN, wd.N)
	}
	return json.Marshal(dto)
}

func decodeRecurrence(raw []byte) (*domain.RecurrenceRule, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var dto recurrenceRuleDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, err
	}
	rule := &domain.RecurrenceRule{
		Freq:       domain.Frequency(dto.Freq),
		Interval:   dto.Interval,
		Count:      dto.Count,
		ByMonthDay: dto.ByMonthDay,
		BySetPos:   dto.BySetPos,
	}
	if dto.UntilMs != nil {
		t := time.UnixMilli(*dto.UntilMs).UTC()
		rule.Until = &t
	}
	for i := range dto.ByWeekday {
		rule.ByWeekday = append(rule.ByWeekday, domain.WeekdayOccurrence{
			Weekday: time.Weekday(dto.ByWeekday[i]),
			N:       dto.ByWeekdayN[i],
		})
	}
	return rule, nil
}

func encodeReminders(r []domain.ReminderOffset) ([]byte, error) {
	return json.Marshal(r)
}

func decodeReminders(raw []byte) ([]domain.ReminderOffset, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var r []domain.ReminderOffset
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func encodeExdates(ms []int64) ([]byte, error) { return json.Marshal(ms) }

func decodeExdates(raw []byte) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ms []int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// Save upserts a calendar_events row.
func (r *CalendarEventRepository) Save(ctx context.Context, event *domain.CalendarEvent) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	recurrence, err := encodeRecurrence(event.Recurrence())
	if err != nil {
		return err
	}
	exdates, err := encodeExdates(event.ExdatesMs())
	if err != nil {
		return err
	}
	reminders, err := encodeReminders(event.Reminders())
	if err != nil {
		return err
	}
	metadata, err := encodeMetadata(event.Metadata())
	if err != nil {
		return err
	}

	_, err = exec.Exec(ctx, `
		INSERT INTO calendar_events (
			id, account_id, calendar_id, user_id, title, description, status, busy,
			start_time, duration_ms, all_day, recurrence, exdates, recurring_event_id,
			original_start_time, parent_id, external_id, reminders, service_id, event_type,
			metadata, reminder_version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		ON CONFLICT (id) DO UPDATE SET
			title = $5, description = $6, status = $7, busy = $8, start_time = $9,
			duration_ms = $10, all_day = $11, recurrence = $12, exdates = $13,
			reminders = $18, service_id = $19, event_type = $20, metadata = $21,
			reminder_version = $22, updated_at = $24
	`,
		event.ID(), event.AccountID(), event.CalendarID(), event.UserID(),
		nullableString(event.Title()), nullableString(event.Description()), string(event.Status()), event.Busy(),
		event.StartTimeMs(), event.DurationMs(), event.AllDay(), recurrence, exdates,
		event.RecurringEventID(), event.OriginalStartTimeMs(), event.ParentID(),
		nullableString(event.ExternalID()), reminders, event.ServiceID(), nullableString(event.EventType()),
		metadata, event.ReminderVersion(), event.CreatedAt(), event.UpdatedAt(),
	)
	return err
}

// FindByID loads an event by id.
func (r *CalendarEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CalendarEvent, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, selectEventColumns+` WHERE id = $1`, id)
	return scanEvent(row)
}

// FindByExternalID loads an event by its account-scoped external id.
func (r *CalendarEventRepository) FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*domain.CalendarEvent, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, selectEventColumns+` WHERE account_id = $1 AND external_id = $2`, accountID, externalID)
	return scanEvent(row)
}

// FindByCalendarWindow loads every event (recurring masters, single events,
// and exceptions) that could contribute an instance overlapping the window.
// Recurring masters are fetched regardless of their own start time since a
// far-past start can still recur into the window.
func (r *CalendarEventRepository) FindByCalendarWindow(ctx context.Context, calendarID uuid.UUID, startMs, endMs int64) ([]*domain.CalendarEvent, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, selectEventColumns+`
		WHERE calendar_id = $1 AND (
			recurrence IS NOT NULL
			OR (start_time < $3 AND start_time + duration_ms > $2)
		)
	`, calendarID, startMs, endMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// FindExceptionsByParent loads every exception event overriding the given
// recurring event.
func (r *CalendarEventRepository) FindExceptionsByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.CalendarEvent, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, selectEventColumns+` WHERE recurring_event_id = $1`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Search runs the event filter DSL.
func (r *CalendarEventRepository) Search(ctx context.Context, filter domain.EventFilter) ([]*domain.CalendarEvent, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	clauses := []string{"account_id = $1"}
	args := []any{filter.AccountID}
	next := func() string {
		args = append(args, nil)
		return fmt.Sprintf("$%d", len(args))
	}
	setLast := func(v any) { args[len(args)-1] = v }

	if len(filter.CalendarIDs) > 0 {
		ph := next()
		setLast(filter.CalendarIDs)
		clauses = append(clauses, fmt.Sprintf("calendar_id = ANY(%s)", ph))
	}
	if filter.IDs != nil {
		appendIDFieldFilter(&clauses, &args, "id", filter.IDs)
	}
	if filter.ParentID != nil {
		appendIDFieldFilter(&clauses, &args, "parent_id", filter.ParentID)
	}
	if filter.ExternalIDs != nil {
		appendStringFieldFilter(&clauses, &args, "external_id", filter.ExternalIDs)
	}
	if filter.StartTimeGte != nil {
		ph := next()
		setLast(*filter.StartTimeGte)
		clauses = append(clauses, fmt.Sprintf("start_time >= %s", ph))
	}
	if filter.StartTimeLte != nil {
		ph := next()
		setLast(*filter.StartTimeLte)
		clauses = append(clauses, fmt.Sprintf("start_time <= %s", ph))
	}
	if len(filter.Metadata) > 0 {
		encoded, err := encodeMetadata(filter.Metadata)
		if err != nil {
			return nil, err
		}
		ph := next()
		setLast(encoded)
		clauses = append(clauses, fmt.Sprintf("metadata @> %s", ph))
	}

	query := selectEventColumns + " WHERE " + strings.Join(clauses, " AND ")
	if filter.Sort != nil {
		dir := "ASC"
		if !filter.Sort.Ascending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", filter.Sort.Field, dir)
	} else {
		query += " ORDER BY start_time ASC"
	}
	if filter.Limit > 0 {
		ph := next()
		setLast(filter.Limit)
		query += fmt.Sprintf(" LIMIT %s", ph)
	}

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func appendIDFieldFilter(clauses *[]string, args *[]any, column string, f *domain.IDFieldFilter) {
	if f.Eq != nil {
		*args = append(*args, *f.Eq)
		*clauses = append(*clauses, fmt.Sprintf("%s = $%d", column, len(*args)))
	}
	if f.Ne != nil {
		*args = append(*args, *f.Ne)
		*clauses = append(*clauses, fmt.Sprintf("%s != $%d", column, len(*args)))
	}
	if len(f.In) > 0 {
		*args = append(*args, f.In)
		*clauses = append(*clauses, fmt.Sprintf("%s = ANY($%d)", column, len(*args)))
	}
	if f.Exists != nil {
		if *f.Exists {
			*clauses = append(*clauses, fmt.Sprintf("%s IS NOT NULL", column))
		} else {
			*clauses = append(*clauses, fmt.Sprintf("%s IS NULL", column))
		}
	}
}

func appendStringFieldFilter(clauses *[]string, args *[]any, column string, f *domain.StringFieldFilter) {
	if f.Eq != nil {
		*args = append(*args, *f.Eq)
		*clauses = append(*clauses, fmt.Sprintf("%s = $%d", column, len(*args)))
	}
	if f.Ne != nil {
		*args = append(*args, *f.Ne)
		*clauses = append(*clauses, fmt.Sprintf("%s != $%d", column, len(*args)))
	}
	if len(f.In) > 0 {
		*args = append(*args, f.In)
		*clauses = append(*clauses, fmt.Sprintf("%s = ANY($%d)", column, len(*args)))
	}
	if f.Exists != nil {
		if *f.Exists {
			*clauses = append(*clauses, fmt.Sprintf("%s IS NOT NULL", column))
		} else {
			*clauses = append(*clauses, fmt.Sprintf("%s IS NULL", column))
		}
	}
}

// DeleteMany removes a set of events in one statement.
func (r *CalendarEventRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM calendar_events WHERE id = ANY($1)`, ids)
	return err
}

// Delete removes a single event.
func (r *CalendarEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	return err
}

const selectEventColumns = `
	SELECT id, account_id, calendar_id, user_id, title, description, status, busy,
		start_time, duration_ms, all_day, recurrence, exdates, recurring_event_id,
		original_start_time, parent_id, external_id, reminders, service_id, event_type,
		metadata, reminder_version, created_at, updated_at
	FROM calendar_events`

func scanEvent(row database.Row) (*domain.CalendarEvent, error) {
	return scanEventRow(row)
}

func scanEvents(rows database.Rows) ([]*domain.CalendarEvent, error) {
	var out []*domain.CalendarEvent
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func scanEventRow(row scannable) (*domain.CalendarEvent, error) {
	var (
		id, accountID, calendarID, userID uuid.UUID
		title, description                *string
		status                             string
		busy                               bool
		startTime, durationMs              int64
		allDay                             bool
		recurrenceRaw, exdatesRaw          []byte
		recurringEventID                   *uuid.UUID
		originalStartTime                  *int64
		parentID                           *uuid.UUID
		externalID                         *string
		remindersRaw                       []byte
		serviceID                          *uuid.UUID
		eventType                          *string
		metadataRaw                        []byte
		reminderVersion                    int64
		createdAt, updatedAt               time.Time
	)

	err := row.Scan(
		&id, &accountID, &calendarID, &userID, &title, &description, &status, &busy,
		&startTime, &durationMs, &allDay, &recurrenceRaw, &exdatesRaw, &recurringEventID,
		&originalStartTime, &parentID, &externalID, &remindersRaw, &serviceID, &eventType,
		&metadataRaw, &reminderVersion, &createdAt, &updatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	recurrence, err := decodeRecurrence(recurrenceRaw)
	if err != nil {
		return nil, err
	}
	exdates, err := decodeExdates(exdatesRaw)
	if err != nil {
		return nil, err
	}
	reminders, err := decodeReminders(remindersRaw)
	if err != nil {
		return nil, err
	}
	metadata, err := decodeMetadata(metadataRaw)
	if err != nil {
		return nil, err
	}

	params := domain.NewCalendarEventParams{
		AccountID:           accountID,
		CalendarID:          calendarID,
		UserID:              userID,
		Title:               deref(title),
		Description:         deref(description),
		Status:              domain.EventStatus(status),
		Busy:                busy,
		StartTimeMs:         startTime,
		DurationMs:          durationMs,
		AllDay:              allDay,
		Recurrence:          recurrence,
		ExdatesMs:           exdates,
		RecurringEventID:    recurringEventID,
		OriginalStartTimeMs: originalStartTime,
		ParentID:            parentID,
		ExternalID:          deref(externalID),
		Reminders:           reminders,
		ServiceID:           serviceID,
		EventType:           deref(eventType),
		Metadata:            metadata,
	}

	return domain.RehydrateCalendarEvent(id, params, reminderVersion, createdAt, updatedAt), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
