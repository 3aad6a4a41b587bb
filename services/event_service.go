package services

import (
	"sync"
	"time"

	"github.com/marcus-holt/materials-tracker-api/models"
)

// EventType classifies a lifecycle event
type EventType string

// Lifecycle event types emitted by the engine
const (
	EventOrderCreated      EventType = "order_created"
	EventStatusChanged     EventType = "status_changed"
	EventDriverAssigned    EventType = "driver_assigned"
	EventBackOrdered       EventType = "back_ordered"
	EventDeliveryScheduled EventType = "delivery_scheduled"
)

// Event carries everything a stakeholder-facing collaborator needs to
// describe what happened to an order
type Event struct {
	Type        EventType
	OrderID     uint
	OrderNumber string
	OldStatus   models.OrderStatus
	NewStatus   models.OrderStatus
	Actor       models.User
	Notes       *string
	Message     string
	Timestamp   time.Time
}

// EventHandler is a function that receives a lifecycle event
type EventHandler func(Event)

// EventBus is a simple synchronous event dispatcher. Handlers run in the
// caller's goroutine, in subscription order.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewEventBus creates an empty event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Subscribe registers a handler for the given event type
func (b *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches an event synchronously to all registered handlers
func (b *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	hs := make([]EventHandler, len(b.handlers[event.Type]))
	copy(hs, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, h := range hs {
		h(event)
	}
}

// Flush removes all handlers (useful in tests)
func (b *EventBus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]EventHandler)
}

var eventBusInstance *EventBus

// InitEventBus initializes the global event bus
func InitEventBus() *EventBus {
	eventBusInstance = NewEventBus()
	return eventBusInstance
}

// GetEventBus returns the global event bus, initializing it if needed
func GetEventBus() *EventBus {
	if eventBusInstance == nil {
		eventBusInstance = NewEventBus()
	}
	return eventBusInstance
}

// SetEventBus sets the global event bus (primarily for testing)
func SetEventBus(bus *EventBus) {
	eventBusInstance = bus
}
