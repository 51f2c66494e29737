// Package command contains write operations (CQRS - Commands).
//
// Each handler validates its command, delegates to the roll-call session and
// publishes the resulting domain event. Publishing failures are logged and
// never fail the command.
package command

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// publish sends event if a publisher is configured.
func publish(log *slog.Logger, publisher shared.EventPublisher, event shared.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		log.Warn("failed to publish event",
			"event_type", event.EventType(),
			"error", err,
		)
	}
}

// newCorrelationID returns an ID that ties a command to the events it emits.
func newCorrelationID() string {
	return uuid.NewString()
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
