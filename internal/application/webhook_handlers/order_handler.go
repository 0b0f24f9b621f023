package webhook_handlers

import (
	"context"
	"fmt"

	"shopmirror/internal/application"
	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// OrderHandler applies order webhook events to the mirror.
type OrderHandler struct {
	mirror ports.MirrorRepository
	logger zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(mirror ports.MirrorRepository, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		mirror: mirror,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == "orders/create" ||
		topic == "orders/updated" ||
		topic == "orders/paid" ||
		topic == "orders/cancelled"
}

// Handle upserts the order snapshot and, when the payload embeds a customer
// reference, the corresponding customer with order-derived spend.
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	order, customer, err := application.NormalizeOrder(event.TenantID, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to normalize order event: %w", err)
	}

	if err := h.mirror.UpsertOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	if customer != nil {
		if err := h.mirror.UpsertCustomer(ctx, customer); err != nil {
			return fmt.Errorf("failed to upsert order customer: %w", err)
		}
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Str("orderId", order.ExternalID).
		Float64("total", order.Total).
		Str("status", order.Status).
		Bool("embeddedCustomer", customer != nil).
		Msg("Applied order webhook event")

	return nil
}
