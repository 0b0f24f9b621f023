package shopify

import (
	"context"
	"fmt"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// WebhookManager registers the platform webhooks that feed the push path.
type WebhookManager struct {
	app         goshopify.App
	callbackURL string
	logger      zerolog.Logger
}

// NewWebhookManager creates a webhook manager. callbackURL is the publicly
// reachable address deliveries are sent to.
func NewWebhookManager(apiKey, apiSecret, callbackURL string, logger zerolog.Logger) *WebhookManager {
	return &WebhookManager{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// DefaultTopics returns the event topics the mirror subscribes to.
func (m *WebhookManager) DefaultTopics() []string {
	return []string{
		"orders/create",
		"orders/updated",
		"products/create",
		"products/update",
		"customers/create",
		"customers/update",
		"app/uninstalled",
	}
}

// EnsureWebhooks registers any missing subscriptions for a connected store.
// Already-registered topics are left untouched.
func (m *WebhookManager) EnsureWebhooks(ctx context.Context, shop, accessToken string) error {
	client, err := goshopify.NewClient(m.app, shop, accessToken)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	existing, err := client.Webhook.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}

	registered := make(map[string]bool, len(existing))
	for _, wh := range existing {
		if wh.Address == m.callbackURL {
			registered[wh.Topic] = true
		}
	}

	for _, topic := range m.DefaultTopics() {
		if registered[topic] {
			continue
		}
		created, err := client.Webhook.Create(ctx, goshopify.Webhook{
			Topic:   topic,
			Address: m.callbackURL,
			Format:  "json",
		})
		if err != nil {
			return fmt.Errorf("failed to create %s webhook: %w", topic, err)
		}
		m.logger.Info().
			Str("shop", shop).
			Str("topic", topic).
			Int64("webhookId", int64(created.Id)).
			Msg("Registered webhook subscription")
	}

	return nil
}
