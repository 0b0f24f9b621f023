package webhook_handlers

import (
	"context"
	"fmt"

	"shopmirror/internal/application"
	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// ProductHandler applies product webhook events to the mirror.
type ProductHandler struct {
	mirror ports.MirrorRepository
	logger zerolog.Logger
}

// NewProductHandler creates a new product webhook handler
func NewProductHandler(mirror ports.MirrorRepository, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		mirror: mirror,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == "products/create" || topic == "products/update"
}

// Handle upserts the product snapshot.
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	product, err := application.NormalizeProduct(event.TenantID, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to normalize product event: %w", err)
	}

	if err := h.mirror.UpsertProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Str("productId", product.ExternalID).
		Str("title", product.Title).
		Msg("Applied product webhook event")

	return nil
}
