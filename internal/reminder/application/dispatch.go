package application

import (
	"context"
	"time"

	calendardomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	"github.com/nitro-scheduler/nitro/internal/reminder/domain"
	"github.com/google/uuid"
)

// ReminderPayload is one due reminder grouped for delivery.
type ReminderPayload struct {
	EventID    uuid.UUID
	Identifier string
}

// Notifier delivers a batch of due reminders to one account's webhook.
// Implemented by internal/webhook against the account's configured
// signing key, which logs delivery failures itself; Run ignores any
// returned error, and nothing is retried.
type Notifier interface {
	NotifyReminders(ctx context.Context, accountID uuid.UUID, reminders []ReminderPayload) error
}

// DispatcherStage runs one pass of the reminder pipeline's dispatcher stage.
type DispatcherStage struct {
	reminders domain.ReminderRepository
	versions  domain.EventReminderVersionRepository
	events    calendardomain.CalendarEventRepository
	notifier  Notifier
}

// NewDispatcherStage creates a DispatcherStage.
func NewDispatcherStage(reminders domain.ReminderRepository, versions domain.EventReminderVersionRepository, events calendardomain.CalendarEventRepository, notifier Notifier) *DispatcherStage {
	return &DispatcherStage{reminders: reminders, versions: versions, events: events, notifier: notifier}
}

// Run atomically claims every reminder due within the next minute,
// discards stale-version rows and rows whose event has been deleted, and
// fans the rest out by account.
func (s *DispatcherStage) Run(ctx context.Context, now time.Time) error {
	cutoff := now.Add(1 * time.Minute).UnixMilli()
	claimed, err := s.reminders.DeleteAllBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(claimed) == 0 {
		return nil
	}

	byAccount := map[uuid.UUID][]ReminderPayload{}
	for _, r := range claimed {
		fresh, err := s.isFresh(ctx, r)
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}
		byAccount[r.AccountID] = append(byAccount[r.AccountID], ReminderPayload{EventID: r.EventID, Identifier: r.Identifier})
	}

	for accountID, payload := range byAccount {
		// Fire-and-forget: a Notifier error for one account must not
		// abort delivery to the remaining accounts.
		_ = s.notifier.NotifyReminders(ctx, accountID, payload)
	}
	return nil
}

func (s *DispatcherStage) isFresh(ctx context.Context, r domain.Reminder) (bool, error) {
	event, err := s.events.FindByID(ctx, r.EventID)
	if err != nil {
		return false, err
	}
	if event == nil {
		return false, nil
	}
	current, known, err := s.versions.Get(ctx, r.EventID)
	if err != nil {
		return false, err
	}
	if !known {
		return false, nil
	}
	return current == r.Version, nil
}
