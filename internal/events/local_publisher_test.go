package events

import (
	"context"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestLocalPublisher_PublishAndSubscribe(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()
	defer p.Shutdown(context.Background())
	ctx := context.Background()

	all, err := p.Subscribe(ctx, "staff-1")
	require.NoError(t, err)
	deletes, err := p.Subscribe(ctx, "staff-2", types.EventTypeFeedbackDeleted)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, testEvent(types.EventTypeFeedbackCreated, "1")))
	require.NoError(t, p.Publish(ctx, testEvent(types.EventTypeFeedbackDeleted, "1")))

	assert.Equal(t, types.EventTypeFeedbackCreated, receive(t, all).Type)
	assert.Equal(t, types.EventTypeFeedbackDeleted, receive(t, all).Type)
	assert.Equal(t, types.EventTypeFeedbackDeleted, receive(t, deletes).Type)
	assert.Len(t, deletes, 0)
}

func TestLocalPublisher_FillsDefaults(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()
	ctx := context.Background()

	ch, err := p.Subscribe(ctx, "staff")
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, types.Event{
		BaseEvent: types.BaseEvent{Type: types.EventTypeFeedbackCreated, FeedbackID: "1"},
	}))
	ev := receive(t, ch)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, 1, ev.Version)
}

func TestLocalPublisher_RejectsInvalidEvent(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()

	err := p.Publish(context.Background(), types.Event{BaseEvent: types.BaseEvent{Type: types.EventTypeFeedbackCreated}})
	assert.ErrorContains(t, err, "invalid event")
}

func TestLocalPublisher_DropsWhenFull(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher(Config{PublishTimeout: time.Second, EventBufferSize: 1})
	ctx := context.Background()

	ch, err := p.Subscribe(ctx, "slow")
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, testEvent(types.EventTypeFeedbackCreated, "1")))
	require.NoError(t, p.Publish(ctx, testEvent(types.EventTypeFeedbackCreated, "2")))

	assert.Equal(t, "1", receive(t, ch).FeedbackID)
	assert.Len(t, ch, 0)
}

func TestLocalPublisher_DuplicateAndUnsubscribe(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()
	ctx := context.Background()

	ch, err := p.Subscribe(ctx, "staff")
	require.NoError(t, err)
	_, err = p.Subscribe(ctx, "staff")
	assert.Error(t, err)

	require.NoError(t, p.Unsubscribe(ctx, "staff"))
	_, ok := <-ch
	assert.False(t, ok, "channel closed on unsubscribe")
	assert.Error(t, p.Unsubscribe(ctx, "staff"))

	_, err = p.Subscribe(ctx, "staff")
	assert.NoError(t, err, "id can be reused after unsubscribe")
}

func TestLocalPublisher_ContextEndsSubscription(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Subscribe(ctx, "ws")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after context cancel")
	}
}

func TestLocalPublisher_Shutdown(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()
	ctx := context.Background()

	ch, err := p.Subscribe(ctx, "staff")
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(ctx))

	_, ok := <-ch
	assert.False(t, ok)
	assert.Error(t, p.Publish(ctx, testEvent(types.EventTypeFeedbackCreated, "1")))
	_, err = p.Subscribe(ctx, "other")
	assert.Error(t, err)
}

func TestPublishEventWithContext(t *testing.T) {
	resetMetricsForTesting()
	p := NewLocalPublisher()
	ctx := context.Background()

	ch, err := p.Subscribe(ctx, "staff")
	require.NoError(t, err)

	change := types.FeedbackStatusChangedEvent{
		FeedbackID: "1",
		OldStatus:  types.FeedbackStatusNew,
		NewStatus:  types.FeedbackStatusResolved,
		ChangedBy:  "staff-1",
	}
	require.NoError(t, PublishEventWithContext(p, ctx, types.EventTypeFeedbackStatusChanged, "1", "staff-1", change, "test"))

	ev := receive(t, ch)
	assert.Equal(t, "1", ev.FeedbackID)
	assert.Equal(t, "staff-1", ev.StaffID)
	assert.Equal(t, "test", ev.Metadata.Source)
	assert.JSONEq(t, `{"feedbackId":"1","oldStatus":"new","newStatus":"resolved","changedBy":"staff-1"}`, string(ev.Payload))
}
