package telemetry

import (
	"context"
	"log"
	"time"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Event types emitted by the service.
const (
	EventUserSignup     = "user.signup"
	EventUserLogin      = "user.login"
	EventMessageSent    = "message.sent"
	EventMessageDeleted = "message.deleted"
)

// Emitter publishes domain events. Emission is best-effort and never fails
// the request that produced the event.
type Emitter struct {
	publisher   Publisher
	service     string
	environment string
}

// Envelope is the versioned wire format for emitted events.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	RequestID     string `json:"request_id"`
	UserID        *int   `json:"user_id,omitempty"`
	Payload       any    `json:"payload,omitempty"`
}

func NewEmitter(publisher Publisher, service, environment string) *Emitter {
	return &Emitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one event using the event type as routing key.
func (e *Emitter) Emit(ctx context.Context, eventType, requestID string, userID *int, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, eventType, envelope); err != nil {
		log.Printf("event publish failed: type=%s request_id=%s err=%v", eventType, requestID, err)
	}
}
