package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types.
const (
	// Roster events
	EventStudentAdded   EventType = "student.added"
	EventRosterImported EventType = "roster.imported"

	// Sampling events
	EventStudentCalled EventType = "student.called"
	EventCycleReset    EventType = "cycle.reset"

	// History events
	EventHistoryCleared EventType = "history.cleared"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event stamped with at.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
		Version:     1,
	}
}

// Correlation returns the correlation ID, empty if none was set.
func (e BaseEvent) Correlation() string {
	return e.CorrelationID
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Roster Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentAddedEvent is emitted when a student joins the roster.
type StudentAddedEvent struct {
	BaseEvent
	Name  string `json:"name"`
	Group string `json:"group"`
}

// Payload implements Event interface.
func (e StudentAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"name":  e.Name,
		"group": e.Group,
	}
}

// NewStudentAddedEvent creates a new StudentAddedEvent.
func NewStudentAddedEvent(studentID, name, group string, at time.Time) StudentAddedEvent {
	return StudentAddedEvent{
		BaseEvent: NewBaseEvent(EventStudentAdded, studentID, at),
		Name:      name,
		Group:     group,
	}
}

// RosterImportedEvent is emitted once per successfully opened import source.
type RosterImportedEvent struct {
	BaseEvent
	Source     string `json:"source"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Malformed  int    `json:"malformed"`
}

// Payload implements Event interface.
func (e RosterImportedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"source":     e.Source,
		"added":      e.Added,
		"duplicates": e.Duplicates,
		"malformed":  e.Malformed,
	}
}

// NewRosterImportedEvent creates a new RosterImportedEvent.
func NewRosterImportedEvent(source string, added, duplicates, malformed int, at time.Time) RosterImportedEvent {
	return RosterImportedEvent{
		BaseEvent:  NewBaseEvent(EventRosterImported, source, at),
		Source:     source,
		Added:      added,
		Duplicates: duplicates,
		Malformed:  malformed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Sampling Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentCalledEvent is emitted after every successful pick.
type StudentCalledEvent struct {
	BaseEvent
	Name      string `json:"name"`
	Group     string `json:"group"`
	Scope     string `json:"scope"` // empty for the global pool
	CallCount int    `json:"call_count"`
}

// Payload implements Event interface.
func (e StudentCalledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"name":       e.Name,
		"group":      e.Group,
		"scope":      e.Scope,
		"call_count": e.CallCount,
	}
}

// NewStudentCalledEvent creates a new StudentCalledEvent.
func NewStudentCalledEvent(studentID, name, group, scope string, callCount int, at time.Time) StudentCalledEvent {
	return StudentCalledEvent{
		BaseEvent: NewBaseEvent(EventStudentCalled, studentID, at),
		Name:      name,
		Group:     group,
		Scope:     scope,
		CallCount: callCount,
	}
}

// CycleResetEvent is emitted when all pools are discarded on request.
type CycleResetEvent struct {
	BaseEvent
}

// Payload implements Event interface.
func (e CycleResetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewCycleResetEvent creates a new CycleResetEvent.
func NewCycleResetEvent(at time.Time) CycleResetEvent {
	return CycleResetEvent{BaseEvent: NewBaseEvent(EventCycleReset, "pool", at)}
}

// HistoryClearedEvent is emitted when the call history is discarded.
type HistoryClearedEvent struct {
	BaseEvent
	Discarded int `json:"discarded"`
}

// Payload implements Event interface.
func (e HistoryClearedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"discarded": e.Discarded,
	}
}

// NewHistoryClearedEvent creates a new HistoryClearedEvent.
func NewHistoryClearedEvent(discarded int, at time.Time) HistoryClearedEvent {
	return HistoryClearedEvent{
		BaseEvent: NewBaseEvent(EventHistoryCleared, "history", at),
		Discarded: discarded,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
