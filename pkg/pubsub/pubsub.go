// Package pubsub is the in-process event bus the store publishes
// mutation events on. Consumers subscribe to trace or react to edits;
// the bus never blocks a publisher on a slow subscriber.
package pubsub

import (
	"context"
	"sync"
)

// Topics published by the editor core.
const (
	TopicGraph   = "graph"   // node/edge/request mutations
	TopicHistory = "history" // undo/redo restores
	TopicExport  = "export"  // domain-file emission
)

// Event describes one editor occurrence.
type Event struct {
	Topic     string
	Op        string // e.g. "addNode", "undo", "emit"
	ElementID uint64 // zero when not element-scoped
}

// Bus provides topic-based publish/subscribe for editor events.
type Bus struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription is one subscriber's handle on a topic.
type Subscription struct {
	topic     string
	channel   chan Event
	bus       *Bus
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates an event bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe creates a subscription to a topic. The subscription ends
// when ctx is cancelled, Unsubscribe is called, or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil, ErrShutdown
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Event, 64),
		bus:     b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription]bool)
	}
	b.subscribers[topic][sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of its topic. Sends are
// non-blocking: a full subscriber buffer drops the event for that
// subscriber rather than stalling the store.
func (b *Bus) Publish(ev Event) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	b.mu.RLock()
	topicSubs := b.subscribers[ev.Topic]
	if len(topicSubs) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of subscribers on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Shutdown closes all subscriptions and stops the bus.
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic := range b.subscribers {
		for sub := range b.subscribers[topic] {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.bus.subscribers[s.topic] != nil {
		delete(s.bus.subscribers[s.topic], s)
		if len(s.bus.subscribers[s.topic]) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}

	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
