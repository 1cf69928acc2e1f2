package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-desk/types"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a throwaway Redis for integration tests.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, redisC)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	mappedPort, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("failed to get container external port: %v", err)
	}
	hostIP, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", hostIP, mappedPort.Port()),
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func testEvent(eventType types.EventType, feedbackID string) types.Event {
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:         "evt-" + feedbackID,
			Type:       eventType,
			FeedbackID: feedbackID,
			Timestamp:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Version:    1,
		},
		Metadata: types.EventMetadata{Source: "test"},
		Payload:  []byte(`{"id":"` + feedbackID + `"}`),
	}
}

func receive(t *testing.T, ch <-chan types.Event) types.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return types.Event{}
}
