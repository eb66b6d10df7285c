package eventbus

import (
	"context"
	"strings"
	"sync"
	"time"

	"firebase-kit/internal/shared/logger"

	"github.com/google/uuid"
)

// Event types published by the wrappers after a successful write
const (
	EventTypeDocumentCreated = "document.created"
	EventTypeDocumentUpdated = "document.updated"
	EventTypeDocumentDeleted = "document.deleted"
	EventTypeValueSet        = "realtime.set"
	EventTypeValueUpdated    = "realtime.updated"
	EventTypeValueDeleted    = "realtime.deleted"
	EventTypeValuePushed     = "realtime.pushed"
	EventTypeBlobUploaded    = "blob.uploaded"
	EventTypeBlobDeleted     = "blob.deleted"
	EventTypeUserCreated     = "user.created"
	EventTypeUserUpdated     = "user.updated"
	EventTypeUserDeleted     = "user.deleted"

	// AllEvents subscribes a handler to every event type
	AllEvents = "*"
)

// Event is a change notification
type Event struct {
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Path      string         `json:"path"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent stamps a change event with the current time
func NewEvent(eventType, source, path string, data map[string]any) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Path:      path,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Product returns the prefix of the event type, e.g. "document".
func (e Event) Product() string {
	if i := strings.IndexByte(e.Type, '.'); i > 0 {
		return e.Type[:i]
	}
	return e.Type
}

// Handler reacts to an event
type Handler func(ctx context.Context, event Event) error

// Publisher is the side of the bus the wrappers depend on
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	AsyncProcessing bool
}

// EventBus is an in-memory fan-out bus
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
	logger   logger.Logger
	config   BusConfig
}

// NewEventBus creates a synchronous event bus
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, BusConfig{})
}

// NewEventBusWithConfig creates a new event bus with custom configuration
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &EventBus{
		handlers: make(map[string]map[string]Handler),
		logger:   log.WithComponent("eventbus"),
		config:   config,
	}
}

// Subscribe registers handler for eventType and returns a function removing it.
func (eb *EventBus) Subscribe(eventType string, handler Handler) (unsubscribe func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := uuid.NewString()
	if eb.handlers[eventType] == nil {
		eb.handlers[eventType] = make(map[string]Handler)
	}
	eb.handlers[eventType][id] = handler
	eb.logger.Debugf("Subscribed handler %s for event type: %s", id, eventType)

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		delete(eb.handlers[eventType], id)
		if len(eb.handlers[eventType]) == 0 {
			delete(eb.handlers, eventType)
		}
	}
}

// Publish delivers event to handlers of its type and to AllEvents handlers.
// Handler errors are logged; the first one is returned.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.snapshot(event.Type)
	if len(handlers) == 0 {
		return nil
	}

	eb.logger.Debugf("Publishing event type: %s to %d handlers", event.Type, len(handlers))

	if eb.config.AsyncProcessing {
		go eb.deliver(context.WithoutCancel(ctx), event, handlers)
		return nil
	}
	return eb.deliver(ctx, event, handlers)
}

func (eb *EventBus) deliver(ctx context.Context, event Event, handlers []Handler) error {
	var first error
	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			eb.logger.Errorf("Handler failed for event %s on %s: %v", event.Type, event.Path, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (eb *EventBus) snapshot(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	out := make([]Handler, 0, len(eb.handlers[eventType])+len(eb.handlers[AllEvents]))
	for _, h := range eb.handlers[eventType] {
		out = append(out, h)
	}
	if eventType != AllEvents {
		for _, h := range eb.handlers[AllEvents] {
			out = append(out, h)
		}
	}
	return out
}

// GetSubscriberCount returns the number of handlers for an event type
func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
