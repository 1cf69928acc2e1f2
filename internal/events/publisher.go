package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NomadCrew/feedback-desk/types"
	"github.com/google/uuid"
)

// Channel is the Redis pub/sub channel feedback events travel on.
const Channel = "feedback:events"

// Config holds publisher tuning.
type Config struct {
	PublishTimeout  time.Duration
	EventBufferSize int
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		PublishTimeout:  5 * time.Second,
		EventBufferSize: 100,
	}
}

// NewEvent builds a versioned event carrying data as its JSON payload.
func NewEvent(eventType types.EventType, feedbackID, staffID string, data interface{}, source string) (types.Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return types.Event{}, fmt.Errorf("marshal event data: %w", err)
	}
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:         uuid.NewString(),
			Type:       eventType,
			FeedbackID: feedbackID,
			StaffID:    staffID,
			Timestamp:  time.Now().UTC(),
			Version:    1,
		},
		Metadata: types.EventMetadata{Source: source},
		Payload:  payload,
	}, nil
}

// PublishEventWithContext builds an event with standard metadata and
// publishes it.
func PublishEventWithContext(publisher types.EventPublisher, ctx context.Context, eventType types.EventType, feedbackID, staffID string, data interface{}, source string) error {
	event, err := NewEvent(eventType, feedbackID, staffID, data, source)
	if err != nil {
		return err
	}
	if err := publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// prepare fills the fields a publisher may default and validates the result.
func prepare(event *types.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = 1
	}
	return event.Validate()
}

func matchesFilters(event types.Event, filters []types.EventType) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if event.Type == f {
			return true
		}
	}
	return false
}
