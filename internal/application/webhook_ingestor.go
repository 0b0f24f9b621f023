package application

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// InboundWebhook is a raw delivery as received from the remote platform.
// Body holds the exact unparsed request bytes the signature was computed
// over.
type InboundWebhook struct {
	Topic      string
	ShopDomain string
	Signature  string
	DeliveryID string
	Body       []byte
}

// WebhookIngestor authenticates and applies single-record incremental
// updates. It shares the mirror's upsert contract with the polling path via
// the registered handlers. Secret and tenant resolution are injected so the
// authentication path stays pure and testable.
type WebhookIngestor struct {
	verifier   ports.SignatureVerifier
	tenants    ports.TenantRepository
	dedupe     ports.DeliveryDeduper
	dispatcher *WebhookDispatcher
	events     ports.EventPublisher
	recorder   ports.MetricsRecorder
	logger     zerolog.Logger
}

// NewWebhookIngestor creates an ingestor. dedupe, events and recorder may
// be nil.
func NewWebhookIngestor(
	verifier ports.SignatureVerifier,
	tenants ports.TenantRepository,
	dedupe ports.DeliveryDeduper,
	dispatcher *WebhookDispatcher,
	events ports.EventPublisher,
	recorder ports.MetricsRecorder,
	logger zerolog.Logger,
) *WebhookIngestor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &WebhookIngestor{
		verifier:   verifier,
		tenants:    tenants,
		dedupe:     dedupe,
		dispatcher: dispatcher,
		events:     events,
		recorder:   recorder,
		logger:     logger,
	}
}

// Ingest processes one delivery. It returns domain.ErrSignatureMismatch for
// an unauthenticated request; unknown tenants, duplicate deliveries and
// unrecognized topics are deliberately not errors, because the sender
// retries non-2xx responses. Any other error is an internal failure.
func (i *WebhookIngestor) Ingest(ctx context.Context, in InboundWebhook) error {
	if err := i.verifier.Verify(in.Body, in.Signature); err != nil {
		i.recorder.WebhookEvent("rejected")
		i.logger.Warn().
			Str("topic", in.Topic).
			Str("shop", in.ShopDomain).
			Msg("Webhook signature verification failed")
		return err
	}

	tenant, err := i.tenants.GetByShopDomain(ctx, in.ShopDomain)
	if err != nil {
		i.recorder.WebhookEvent("failed")
		return fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if tenant == nil {
		// Accept-and-ignore: a 2xx stops the sender from retrying a
		// delivery no registered tenant will ever want.
		i.recorder.WebhookEvent("ignored")
		i.logger.Info().
			Str("topic", in.Topic).
			Str("shop", in.ShopDomain).
			Msg("Webhook for unknown tenant, accepting and ignoring")
		return nil
	}

	if in.DeliveryID != "" && i.dedupe != nil && i.dedupe.Seen(ctx, in.DeliveryID) {
		i.recorder.WebhookEvent("duplicate")
		i.logger.Debug().
			Str("deliveryId", in.DeliveryID).
			Str("topic", in.Topic).
			Msg("Duplicate webhook delivery, acknowledging without processing")
		return nil
	}

	event := &domain.WebhookEvent{
		Topic:      in.Topic,
		Shop:       in.ShopDomain,
		TenantID:   tenant.ID,
		DeliveryID: in.DeliveryID,
		Payload:    in.Body,
		ReceivedAt: time.Now(),
	}

	if err := i.dispatcher.Dispatch(ctx, event); err != nil {
		i.recorder.WebhookEvent("failed")
		return fmt.Errorf("failed to apply webhook event: %w", err)
	}

	// Remember the delivery only after it has been applied: a failed
	// dispatch returns non-2xx and the sender's retry must be processed.
	if in.DeliveryID != "" && i.dedupe != nil {
		i.dedupe.MarkApplied(ctx, in.DeliveryID)
	}

	if i.events != nil {
		i.events.Publish(event)
	}

	i.recorder.WebhookEvent("applied")
	return nil
}
