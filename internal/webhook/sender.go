// Package webhook delivers fire-and-forget JSON payloads, with the
// account's signing key in a request header, to an account's configured
// endpoint — currently just the reminder dispatcher's
// `{reminders: [...]}` batch, but shaped so other event types could
// reuse the same sender.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	reminderapp "github.com/nitro-scheduler/nitro/internal/reminder/application"
	"github.com/google/uuid"
)

// SignatureHeader is the header carrying the account's signing key, as
// specified by the reminder dispatcher's delivery contract.
const SignatureHeader = "nittei-scheduler-webhook-key"

const deliveryTimeout = 10 * time.Second

// AccountResolver looks up an account's webhook URL and signing key.
// Implemented by internal/account; accounts without a configured webhook
// are skipped entirely.
type AccountResolver interface {
	WebhookConfig(ctx context.Context, accountID uuid.UUID) (url string, signingKey string, configured bool, err error)
}

// Sender implements reminderapp.Notifier by POSTing a JSON body to the
// account's webhook endpoint, with the signing key in SignatureHeader.
type Sender struct {
	client    *http.Client
	accounts  AccountResolver
	logger    *slog.Logger
}

// NewSender creates a Sender with the mandated 10-second delivery timeout.
func NewSender(accounts AccountResolver, logger *slog.Logger) *Sender {
	return &Sender{
		client:   &http.Client{Timeout: deliveryTimeout},
		accounts: accounts,
		logger:   logger,
	}
}

type reminderEntry struct {
	Event      uuid.UUID `json:"event"`
	Identifier string    `json:"identifier"`
}

type reminderBatch struct {
	Reminders []reminderEntry `json:"reminders"`
}

// NotifyReminders implements reminderapp.Notifier. Delivery is
// best-effort: a non-2xx response, a transport error, or a missing
// webhook configuration is logged and swallowed, never retried.
func (s *Sender) NotifyReminders(ctx context.Context, accountID uuid.UUID, reminders []reminderapp.ReminderPayload) error {
	url, signingKey, configured, err := s.accounts.WebhookConfig(ctx, accountID)
	if err != nil {
		return err
	}
	if !configured {
		s.logger.Debug("webhook not configured, dropping reminders", "account_id", accountID, "count", len(reminders))
		return nil
	}

	entries := make([]reminderEntry, 0, len(reminders))
	for _, r := range reminders {
		entries = append(entries, reminderEntry{Event: r.EventID, Identifier: r.Identifier})
	}
	body, err := json.Marshal(reminderBatch{Reminders: entries})
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signingKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("webhook delivery failed", "account_id", accountID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("webhook delivery non-2xx", "account_id", accountID, "status", resp.StatusCode)
		return nil
	}

	s.logger.Debug("webhook delivered", "account_id", accountID, "count", len(reminders))
	return nil
}
