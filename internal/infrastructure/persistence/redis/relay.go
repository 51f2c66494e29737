package redis

import (
	"context"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// EventMessage is the JSON body published for each domain event.
type EventMessage struct {
	Type          string                 `json:"type"`
	AggregateID   string                 `json:"aggregate_id"`
	OccurredAt    time.Time              `json:"occurred_at"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
}

// NewEventMessage converts a domain event into its published form.
func NewEventMessage(event shared.Event) EventMessage {
	msg := EventMessage{
		Type:        string(event.EventType()),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	}
	if c, ok := event.(interface{ Correlation() string }); ok {
		msg.CorrelationID = c.Correlation()
	}
	return msg
}

// EventRelay re-publishes domain events on "rollcall:{session}:events:{type}".
type EventRelay struct {
	cache     *Cache
	sessionID string
	timeout   time.Duration
}

// NewEventRelay creates a relay for one session.
func NewEventRelay(cache *Cache, sessionID string, timeout time.Duration) *EventRelay {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &EventRelay{cache: cache, sessionID: sessionID, timeout: timeout}
}

// Handle implements shared.EventHandler.
func (r *EventRelay) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	channel := EventChannel(r.sessionID, string(event.EventType()))
	return r.cache.Publish(ctx, channel, NewEventMessage(event))
}
