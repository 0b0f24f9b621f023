package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// nopRecorder stands in when no metrics backend is wired.
type nopRecorder struct{}

func (nopRecorder) SyncCycle(string)          {}
func (nopRecorder) RecordsSynced(string, int) {}
func (nopRecorder) WebhookEvent(string)       {}

// SyncService brings one tenant's mirror up to date with the remote
// platform: it resolves the store credential, fetches the three resource
// collections concurrently, and reconciles every item into the mirror.
type SyncService struct {
	stores    ports.StoreConnectionRepository
	mirror    ports.MirrorRepository
	fetcher   ports.CollectionFetcher
	registrar ports.WebhookRegistrar
	recorder  ports.MetricsRecorder
	maxItems  int
	logger    zerolog.Logger
}

// NewSyncService creates a sync service. registrar and recorder may be nil
// when webhook registration or metrics are handled elsewhere; maxItems <= 0
// means uncapped fetches.
func NewSyncService(
	stores ports.StoreConnectionRepository,
	mirror ports.MirrorRepository,
	fetcher ports.CollectionFetcher,
	registrar ports.WebhookRegistrar,
	recorder ports.MetricsRecorder,
	maxItems int,
	logger zerolog.Logger,
) *SyncService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SyncService{
		stores:    stores,
		mirror:    mirror,
		fetcher:   fetcher,
		registrar: registrar,
		recorder:  recorder,
		maxItems:  maxItems,
		logger:    logger,
	}
}

type fetchResult struct {
	resource string
	items    []json.RawMessage
	err      error
}

// SyncTenant runs one full resynchronization cycle for a tenant. A missing
// connection or empty credential fails the cycle before any work starts.
// The three resource fetches are joined, so failure of any one fails the
// whole cycle; each successful upsert commits immediately and is not rolled
// back by a later failure.
func (s *SyncService) SyncTenant(ctx context.Context, tenant *domain.Tenant) (*domain.SyncReceipt, error) {
	conn, err := s.stores.GetByTenantID(ctx, tenant.ID)
	if err != nil {
		s.recorder.SyncCycle("failure")
		return nil, fmt.Errorf("failed to resolve store connection: %w", err)
	}
	if conn == nil || conn.AccessToken == "" {
		s.recorder.SyncCycle("failure")
		return nil, fmt.Errorf("tenant %s: %w", tenant.ID, domain.ErrCredentialMissing)
	}

	s.ensureWebhooks(ctx, conn)

	resources := []string{ports.ResourceProducts, ports.ResourceCustomers, ports.ResourceOrders}
	results := make(chan fetchResult, len(resources))
	for _, resource := range resources {
		go func(resource string) {
			items, err := s.fetcher.FetchAll(ctx, conn.ShopDomain, conn.AccessToken, resource, s.maxItems)
			results <- fetchResult{resource: resource, items: items, err: err}
		}(resource)
	}

	collections := make(map[string][]json.RawMessage, len(resources))
	var fetchErr error
	for range resources {
		res := <-results
		if res.err != nil && fetchErr == nil {
			fetchErr = fmt.Errorf("failed to fetch %s: %w", res.resource, res.err)
		}
		collections[res.resource] = res.items
	}
	if fetchErr != nil {
		s.recorder.SyncCycle("failure")
		return nil, fetchErr
	}

	receipt := &domain.SyncReceipt{}

	for _, raw := range collections[ports.ResourceProducts] {
		product, err := NormalizeProduct(tenant.ID, raw)
		if err != nil {
			s.logger.Warn().Err(err).Str("tenantId", tenant.ID).Msg("Skipping malformed product")
			continue
		}
		if err := s.mirror.UpsertProduct(ctx, product); err != nil {
			s.recorder.SyncCycle("failure")
			return nil, fmt.Errorf("failed to upsert product %s: %w", product.ExternalID, err)
		}
		receipt.Products++
	}

	for _, raw := range collections[ports.ResourceCustomers] {
		customer, err := NormalizeCustomer(tenant.ID, raw)
		if err != nil {
			s.logger.Warn().Err(err).Str("tenantId", tenant.ID).Msg("Skipping malformed customer")
			continue
		}
		if err := s.mirror.UpsertCustomer(ctx, customer); err != nil {
			s.recorder.SyncCycle("failure")
			return nil, fmt.Errorf("failed to upsert customer %s: %w", customer.ExternalID, err)
		}
		receipt.Customers++
	}

	for _, raw := range collections[ports.ResourceOrders] {
		order, _, err := NormalizeOrder(tenant.ID, raw)
		if err != nil {
			s.logger.Warn().Err(err).Str("tenantId", tenant.ID).Msg("Skipping malformed order")
			continue
		}
		if err := s.mirror.UpsertOrder(ctx, order); err != nil {
			s.recorder.SyncCycle("failure")
			return nil, fmt.Errorf("failed to upsert order %s: %w", order.ExternalID, err)
		}
		receipt.Orders++
	}

	receipt.CompletedAt = time.Now()
	if err := s.stores.UpdateLastSync(ctx, tenant.ID, receipt.CompletedAt); err != nil {
		s.recorder.SyncCycle("failure")
		return nil, fmt.Errorf("failed to update last sync: %w", err)
	}

	s.recorder.SyncCycle("success")
	s.recorder.RecordsSynced(ports.ResourceProducts, receipt.Products)
	s.recorder.RecordsSynced(ports.ResourceCustomers, receipt.Customers)
	s.recorder.RecordsSynced(ports.ResourceOrders, receipt.Orders)

	s.logger.Info().
		Str("tenantId", tenant.ID).
		Str("shop", conn.ShopDomain).
		Int("products", receipt.Products).
		Int("customers", receipt.Customers).
		Int("orders", receipt.Orders).
		Msg("Tenant sync completed")

	return receipt, nil
}

// ensureWebhooks registers the push-path subscriptions for stores that do
// not have them yet. Registration failure is logged, not fatal: polling
// keeps the mirror converging without the push path.
func (s *SyncService) ensureWebhooks(ctx context.Context, conn *domain.StoreConnection) {
	if s.registrar == nil || conn.WebhooksConfigured {
		return
	}
	if err := s.registrar.EnsureWebhooks(ctx, conn.ShopDomain, conn.AccessToken); err != nil {
		s.logger.Warn().Err(err).Str("shop", conn.ShopDomain).Msg("Failed to register webhooks")
		return
	}
	if err := s.stores.SetWebhooksConfigured(ctx, conn.TenantID, true); err != nil {
		s.logger.Warn().Err(err).Str("tenantId", conn.TenantID).Msg("Failed to record webhook registration")
		return
	}
	conn.WebhooksConfigured = true
}
