package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure RedisPublisher implements types.EventPublisher
var _ types.EventPublisher = (*RedisPublisher)(nil)

// RedisPublisher implements types.EventPublisher using Redis Pub/Sub so
// every server instance sees every feedback change.
type RedisPublisher struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
	mu      sync.RWMutex
	subs    map[string]*subscription
	wg      sync.WaitGroup
}

type subscription struct {
	pubsub    *redis.PubSub
	cancelCtx context.CancelFunc
	closeOnce sync.Once
}

// NewRedisPublisher creates a new RedisPublisher instance
func NewRedisPublisher(rdb *redis.Client, cfg ...Config) *RedisPublisher {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &RedisPublisher{
		rdb:     rdb,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
		subs:    make(map[string]*subscription),
	}
}

// Publish publishes an event to the feedback channel.
func (p *RedisPublisher) Publish(ctx context.Context, event types.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if err := prepare(&event); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("invalid event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "marshal").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "redis").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("publish", string(event.Type)).Inc()
	return nil
}

// Subscribe opens a dedicated pub/sub connection for subscriberID.
func (p *RedisPublisher) Subscribe(ctx context.Context, subscriberID string, filters ...types.EventType) (<-chan types.Event, error) {
	p.mu.Lock()
	if _, exists := p.subs[subscriberID]; exists {
		p.mu.Unlock()
		p.metrics.errorCount.WithLabelValues("subscribe", "duplicate").Inc()
		return nil, fmt.Errorf("subscription already exists for %s", subscriberID)
	}

	pubsub := p.rdb.Subscribe(ctx, Channel)
	subCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{pubsub: pubsub, cancelCtx: cancel}
	p.subs[subscriberID] = sub
	p.mu.Unlock()

	p.metrics.activeSubscribers.Inc()

	events := make(chan types.Event, p.config.EventBufferSize)
	readyCh := make(chan struct{})

	p.wg.Add(1)
	go p.processMessages(subCtx, sub, events, filters, subscriberID, readyCh)

	// The subscription also ends with the caller's context.
	context.AfterFunc(ctx, cancel)

	select {
	case <-readyCh:
	case <-time.After(5 * time.Second):
		p.log.Warnw("Subscription ready timeout", "subscriber", subscriberID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return events, nil
}

func (p *RedisPublisher) processMessages(ctx context.Context, sub *subscription, events chan<- types.Event, filters []types.EventType, subscriberID string, readyCh chan<- struct{}) {
	defer p.wg.Done()
	defer func() {
		sub.closeOnce.Do(func() {
			if err := sub.pubsub.Close(); err != nil {
				p.log.Errorw("Error closing pubsub in processMessages", "error", err, "subscriber", subscriberID)
			}
		})

		p.mu.Lock()
		if p.subs[subscriberID] == sub {
			delete(p.subs, subscriberID)
		}
		p.mu.Unlock()

		close(events)
		p.metrics.activeSubscribers.Dec()
		p.log.Infow("Subscription closed", "subscriber", subscriberID)
	}()

	ch := sub.pubsub.Channel()
	close(readyCh)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event types.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				p.metrics.errorCount.WithLabelValues("process", "unmarshal").Inc()
				p.log.Errorw("Failed to unmarshal event", "error", err, "subscriber", subscriberID)
				continue
			}
			if !matchesFilters(event, filters) {
				continue
			}

			// Drop rather than block when the subscriber falls behind
			select {
			case events <- event:
				p.metrics.eventCount.WithLabelValues("receive", string(event.Type)).Inc()
			default:
				p.metrics.errorCount.WithLabelValues("process", "channel_full").Inc()
				p.log.Warnw("Dropped event due to full channel", "subscriber", subscriberID, "eventType", event.Type)
			}
		}
	}
}

// Unsubscribe removes a subscription
func (p *RedisPublisher) Unsubscribe(ctx context.Context, subscriberID string) error {
	p.mu.Lock()
	sub, exists := p.subs[subscriberID]
	if !exists {
		p.mu.Unlock()
		return fmt.Errorf("no subscription found for %s", subscriberID)
	}
	delete(p.subs, subscriberID)
	p.mu.Unlock()

	sub.cancelCtx()
	sub.closeOnce.Do(func() {
		if err := sub.pubsub.Close(); err != nil {
			p.log.Errorw("Error closing pubsub during unsubscribe", "error", err, "subscriber", subscriberID)
		}
	})
	return nil
}

// Shutdown cancels every subscription and waits for their goroutines.
func (p *RedisPublisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	localSubs := make(map[string]*subscription, len(p.subs))
	for k, v := range p.subs {
		localSubs[k] = v
	}
	p.subs = make(map[string]*subscription)
	p.mu.Unlock()

	p.log.Infow("Shutting down RedisPublisher, cancelling subscriptions...", "count", len(localSubs))
	for _, sub := range localSubs {
		sub.cancelCtx()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.log.Infow("RedisPublisher shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
