// Package eventhandler holds the domain event subscribers that keep the
// optional PostgreSQL archive and Redis call board in step with the session.
//
// Mirrors are best effort: a failing mirror is logged by the event bus and
// never affects the session.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// DefaultMirrorTimeout bounds one mirror write.
const DefaultMirrorTimeout = 3 * time.Second

// RosterSnapshotter provides the current roster with call counts.
type RosterSnapshotter interface {
	StatsSnapshot() []student.Student
}

// subscription binds one event type to a handler.
type subscription struct {
	eventType shared.EventType
	handler   shared.EventHandler
}

func subscribeAll(sub shared.EventSubscriber, subs []subscription) error {
	for _, s := range subs {
		if err := sub.Subscribe(s.eventType, s.handler); err != nil {
			return err
		}
	}
	return nil
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultMirrorTimeout
	}
	return context.WithTimeout(context.Background(), d)
}

func mirrorLogger(log *slog.Logger, name string) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With("handler", name)
}

// unexpected logs an event that reached a handler of another type.
func unexpected(log *slog.Logger, event shared.Event) error {
	log.Warn("unexpected event type", "event_type", event.EventType())
	return nil
}
