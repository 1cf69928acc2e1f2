package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"go.uber.org/zap"
)

// Ensure LocalPublisher implements types.EventPublisher
var _ types.EventPublisher = (*LocalPublisher)(nil)

// LocalPublisher fans events out to in-process subscribers. It serves a
// single server instance; RedisPublisher is used when several share a store.
type LocalPublisher struct {
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config

	mu     sync.RWMutex
	subs   map[string]*localSubscription
	closed bool
}

type localSubscription struct {
	ch      chan types.Event
	filters []types.EventType
	stop    func() bool
}

func NewLocalPublisher(cfg ...Config) *LocalPublisher {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	return &LocalPublisher{
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
		subs:    make(map[string]*localSubscription),
	}
}

// Publish never blocks: subscribers whose buffer is full miss the event.
func (p *LocalPublisher) Publish(ctx context.Context, event types.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if err := prepare(&event); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("invalid event: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is shut down")
	}

	for id, sub := range p.subs {
		if !matchesFilters(event, sub.filters) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			p.metrics.errorCount.WithLabelValues("publish", "channel_full").Inc()
			p.log.Warnw("Dropped event due to full channel", "subscriber", id, "eventType", event.Type)
		}
	}
	p.metrics.eventCount.WithLabelValues("publish", string(event.Type)).Inc()
	return nil
}

// Subscribe registers subscriberID until Unsubscribe, Shutdown or ctx ends.
// The returned channel is closed then.
func (p *LocalPublisher) Subscribe(ctx context.Context, subscriberID string, filters ...types.EventType) (<-chan types.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("publisher is shut down")
	}
	if _, exists := p.subs[subscriberID]; exists {
		p.metrics.errorCount.WithLabelValues("subscribe", "duplicate").Inc()
		return nil, fmt.Errorf("subscription already exists for %s", subscriberID)
	}

	sub := &localSubscription{
		ch:      make(chan types.Event, p.config.EventBufferSize),
		filters: filters,
	}
	sub.stop = context.AfterFunc(ctx, func() {
		_ = p.remove(subscriberID, sub)
	})
	p.subs[subscriberID] = sub
	p.metrics.activeSubscribers.Inc()
	return sub.ch, nil
}

func (p *LocalPublisher) Unsubscribe(ctx context.Context, subscriberID string) error {
	p.mu.RLock()
	sub, exists := p.subs[subscriberID]
	p.mu.RUnlock()
	if !exists {
		return fmt.Errorf("no subscription found for %s", subscriberID)
	}
	sub.stop()
	return p.remove(subscriberID, sub)
}

// remove closes sub if it is still the registered subscription for id.
func (p *LocalPublisher) remove(id string, sub *localSubscription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subs[id] != sub {
		return nil
	}
	delete(p.subs, id)
	close(sub.ch)
	p.metrics.activeSubscribers.Dec()
	return nil
}

// Shutdown closes every subscription. Later publishes fail.
func (p *LocalPublisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infow("Shutting down LocalPublisher", "subscribers", len(p.subs))
	for id, sub := range p.subs {
		sub.stop()
		close(sub.ch)
		delete(p.subs, id)
		p.metrics.activeSubscribers.Dec()
	}
	p.closed = true
	return nil
}
