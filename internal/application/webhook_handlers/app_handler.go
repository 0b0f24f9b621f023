package webhook_handlers

import (
	"context"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// AppHandler reacts to the store uninstalling the app: the access token is
// revoked remotely at that point, so the connection is cleared and webhook
// registration is considered gone. Subsequent sync cycles for the tenant
// fail with a missing credential until the store reconnects.
type AppHandler struct {
	stores ports.StoreConnectionRepository
	logger zerolog.Logger
}

// NewAppHandler creates a new app lifecycle webhook handler
func NewAppHandler(stores ports.StoreConnectionRepository, logger zerolog.Logger) *AppHandler {
	return &AppHandler{
		stores: stores,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle clears the tenant's store credential.
func (h *AppHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	conn, err := h.stores.GetByTenantID(ctx, event.TenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve store connection: %w", err)
	}
	if conn == nil {
		return nil
	}

	conn.AccessToken = ""
	conn.WebhooksConfigured = false
	if err := h.stores.Save(ctx, conn); err != nil {
		return fmt.Errorf("failed to clear store connection: %w", err)
	}

	h.logger.Info().
		Str("tenantId", event.TenantID).
		Str("shop", event.Shop).
		Msg("App uninstalled, store connection cleared")

	return nil
}
