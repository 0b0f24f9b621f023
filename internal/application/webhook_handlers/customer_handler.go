package webhook_handlers

import (
	"context"
	"fmt"

	"shopmirror/internal/application"
	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerHandler applies customer webhook events to the mirror.
type CustomerHandler struct {
	mirror ports.MirrorRepository
	logger zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(mirror ports.MirrorRepository, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		mirror: mirror,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == "customers/create" ||
		topic == "customers/update" ||
		topic == "customers/enable" ||
		topic == "customers/disable"
}

// Handle upserts the customer snapshot.
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	customer, err := application.NormalizeCustomer(event.TenantID, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to normalize customer event: %w", err)
	}

	if err := h.mirror.UpsertCustomer(ctx, customer); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Str("customerId", customer.ExternalID).
		Str("email", customer.Email).
		Msg("Applied customer webhook event")

	return nil
}
