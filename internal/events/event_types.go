package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
	EventPaymentCreated EventType = "payment_created"
	EventPaymentUpdated EventType = "payment_updated"
)

// Collection tags the data set a write touched. Reads tagged with the same
// collection are stale once an event for it is published.
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionPayments Collection = "payments"
	CollectionPlans    Collection = "payment_plans"
)

// WriteEvents lists every event type emitted after a successful write.
var WriteEvents = []EventType{
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
	EventPaymentCreated,
	EventPaymentUpdated,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	Collection Collection  `json:"collection"`
	EntityID   string      `json:"entity_id"`
	ActorID    string      `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// UserWrittenPayload payload.
type UserWrittenPayload struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// PaymentWrittenPayload payload.
type PaymentWrittenPayload struct {
	UserID     string `json:"user_id"`
	PlanID     string `json:"plan_id"`
	AmountPaid string `json:"amount_paid"`
	Status     string `json:"status"`
}
