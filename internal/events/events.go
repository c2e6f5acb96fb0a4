package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated  = "booking_created"
	EventBookingUpdated  = "booking_updated"
	EventBookingCanceled = "booking_canceled"
	EventReviewCreated   = "review_created"
)

// BookingEventPayload is the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID int64     `json:"booking_id"`
	SpotID    int64     `json:"spot_id"`
	UserID    int64     `json:"user_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// ReviewEventPayload is the minimal review snapshot for event consumers.
type ReviewEventPayload struct {
	ReviewID int64 `json:"review_id"`
	SpotID   int64 `json:"spot_id"`
	UserID   int64 `json:"user_id"`
	Stars    int64 `json:"stars"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// PublishJSON marshals payload and delivers the event to every subscriber of
// eventType, synchronously, in subscription order.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &Event{
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}

	b.mu.RLock()
	handlers := b.subscribers[eventType]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			return err
		}
	}
	return nil
}
