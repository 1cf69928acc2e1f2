package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/feedback-desk/errors"
)

type EventType string

const CategoryFeedback = "FEEDBACK"

const (
	EventTypeFeedbackCreated       EventType = CategoryFeedback + "_CREATED"
	EventTypeFeedbackStatusChanged EventType = CategoryFeedback + "_STATUS_CHANGED"
	EventTypeFeedbackDeleted       EventType = CategoryFeedback + "_DELETED"
)

// BaseEvent carries the fields every feedback event has.
type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	FeedbackID string    `json:"feedbackId"`
	StaffID    string    `json:"staffId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Version    int       `json:"version"`
}

// EventMetadata for tracking and debugging
type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.FeedbackID == "" {
		return errors.ValidationFailed("invalid event", "feedback ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher fans feedback events out to staff subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, subscriberID string, filters ...EventType) (<-chan Event, error)
	Unsubscribe(ctx context.Context, subscriberID string) error
	Shutdown(ctx context.Context) error
}

type FeedbackStatusChangedEvent struct {
	FeedbackID string         `json:"feedbackId"`
	OldStatus  FeedbackStatus `json:"oldStatus"`
	NewStatus  FeedbackStatus `json:"newStatus"`
	ChangedBy  string         `json:"changedBy,omitempty"`
}

type FeedbackDeletedEvent struct {
	FeedbackID string `json:"feedbackId"`
	DeletedBy  string `json:"deletedBy,omitempty"`
}
