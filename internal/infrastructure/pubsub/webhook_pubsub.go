package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// Subscription is a channel of webhook events matching a filter
type Subscription struct {
	ID     string
	Filter *EventFilter
	Events chan *domain.WebhookEvent
	cancel context.CancelFunc
}

// EventFilter narrows a subscription by topic and/or shop domain
type EventFilter struct {
	Topics []string
	Shop   string
}

// WebhookPubSub fans verified webhook events out to in-process subscribers.
// Delivery is non-blocking; a subscriber with a full buffer misses events.
type WebhookPubSub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	nextID int64
	logger zerolog.Logger
}

// NewWebhookPubSub creates a new webhook pub/sub fan-out
func NewWebhookPubSub(logger zerolog.Logger) *WebhookPubSub {
	return &WebhookPubSub{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

// Subscribe registers a new subscription; it is removed when ctx ends.
func (ps *WebhookPubSub) Subscribe(ctx context.Context, filter *EventFilter) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)

	ps.mu.Lock()
	ps.nextID++
	sub := &Subscription{
		ID:     fmt.Sprintf("sub-%d", ps.nextID),
		Filter: filter,
		Events: make(chan *domain.WebhookEvent, 16),
		cancel: cancel,
	}
	ps.subs[sub.ID] = sub
	ps.mu.Unlock()

	ps.logger.Debug().Str("subscriptionId", sub.ID).Msg("Webhook subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(sub.ID)
	}()

	return sub
}

// Unsubscribe removes a subscription and closes its channel
func (ps *WebhookPubSub) Unsubscribe(id string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sub, ok := ps.subs[id]
	if !ok {
		return
	}
	delete(ps.subs, id)
	sub.cancel()
	close(sub.Events)

	ps.logger.Debug().Str("subscriptionId", id).Msg("Webhook subscription removed")
}

// Publish broadcasts an event to all matching subscribers without blocking
func (ps *WebhookPubSub) Publish(event *domain.WebhookEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, sub := range ps.subs {
		if !matches(event, sub.Filter) {
			continue
		}
		select {
		case sub.Events <- event:
		default:
			ps.logger.Warn().Str("subscriptionId", sub.ID).Str("topic", event.Topic).Msg("Subscriber buffer full, dropping event")
		}
	}
}

func matches(event *domain.WebhookEvent, filter *EventFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Shop != "" && filter.Shop != event.Shop {
		return false
	}
	if len(filter.Topics) == 0 {
		return true
	}
	for _, t := range filter.Topics {
		if t == event.Topic {
			return true
		}
	}
	return false
}
