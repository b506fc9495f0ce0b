package outbox

import (
	"encoding/json"
	"time"

	"github.com/nitro-scheduler/nitro/internal/shared/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Message represents an outbox message ready for publishing.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage creates an outbox message from a domain event. The message's
// Payload is the full eventbus.ConsumedEvent envelope (not the bare event
// JSON) since that is the shape every transport — in-process dispatch and
// the RabbitMQ consumer alike — unmarshals a delivery into; the event
// itself is nested under the envelope's own Payload field.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	innerPayload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	meta := event.Metadata()
	metadata, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	envelope := eventbus.ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       innerPayload,
		Metadata: eventbus.EventMetadata{
			UserID:        meta.UserID,
			CorrelationID: meta.CorrelationID.String(),
			CausationID:   meta.CausationID.String(),
		},
	}
	envelopeBytes, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.RoutingKey(), // Using routing key as event type
		RoutingKey:    event.RoutingKey(),
		Payload:       envelopeBytes,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if the message can be retried.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
