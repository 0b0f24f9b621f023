package pubsub

import (
	"context"
	"fmt"
	"sync"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// Subscription is one consumer's stream of applied webhook events.
type Subscription struct {
	ID     string
	Filter *EventFilter
	Events chan *domain.WebhookEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// EventFilter narrows a subscription to particular topics or one shop.
type EventFilter struct {
	Topics []string
	Shop   string
}

// EventPubSub fans applied webhook events out to in-process consumers.
// Delivery is non-blocking; slow consumers drop events.
type EventPubSub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	nextID int64
	logger zerolog.Logger
}

// NewEventPubSub creates a new event pub/sub.
func NewEventPubSub(logger zerolog.Logger) *EventPubSub {
	return &EventPubSub{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

// Subscribe creates a subscription that lives until ctx is cancelled or
// Unsubscribe is called.
func (ps *EventPubSub) Subscribe(ctx context.Context, filter *EventFilter) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)

	ps.mu.Lock()
	ps.nextID++
	sub := &Subscription{
		ID:     fmt.Sprintf("sub-%d", ps.nextID),
		Filter: filter,
		Events: make(chan *domain.WebhookEvent, 10),
		ctx:    subCtx,
		cancel: cancel,
	}
	ps.subs[sub.ID] = sub
	ps.mu.Unlock()

	ps.logger.Debug().Str("subscriptionId", sub.ID).Msg("Event subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(sub.ID)
	}()

	return sub
}

// Unsubscribe removes a subscription and closes its event channel.
func (ps *EventPubSub) Unsubscribe(id string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sub, ok := ps.subs[id]
	if !ok {
		return
	}

	sub.cancel()
	close(sub.Events)
	delete(ps.subs, id)

	ps.logger.Debug().Str("subscriptionId", id).Msg("Event subscription removed")
}

// Publish broadcasts an event to all matching subscribers.
func (ps *EventPubSub) Publish(event *domain.WebhookEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, sub := range ps.subs {
		if !matches(event, sub.Filter) {
			continue
		}
		select {
		case sub.Events <- event:
		case <-sub.ctx.Done():
		default:
			ps.logger.Warn().
				Str("subscriptionId", sub.ID).
				Str("topic", event.Topic).
				Msg("Subscriber buffer full, dropping event")
		}
	}
}

func matches(event *domain.WebhookEvent, filter *EventFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.Topics) > 0 {
		found := false
		for _, topic := range filter.Topics {
			if event.Topic == topic {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Shop != "" && event.Shop != filter.Shop {
		return false
	}
	return true
}

var _ ports.EventPublisher = (*EventPubSub)(nil)
