package application

import (
	"context"

	"shopmirror/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes webhook events for the topics it declares.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes a verified event to the first handler claiming
// its topic. Unrecognized topics are accepted and logged, never rejected,
// so the platform can evolve its schema without triggering retry storms.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher.
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler. Registration order is dispatch order.
func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch routes an event to its handler.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	for _, h := range d.handlers {
		if h.CanHandle(event.Topic) {
			return h.Handle(ctx, event)
		}
	}

	d.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Msg("No handler for webhook topic, accepting and ignoring")
	return nil
}
