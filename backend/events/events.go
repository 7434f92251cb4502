// Package events publishes practice-test domain events to a RabbitMQ topic
// exchange.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionFailed    EventType = "session.failed"
	EventAttemptCompleted EventType = "attempt.completed"
)

type Event struct {
	ID        string    `json:"id"`
	EventType EventType `json:"eventType"`
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

func NewEvent(eventType EventType, userID string, payload any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
