package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmirror/internal/application"
	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"
)

func seedConnection(t *testing.T, stores *fakeStores, tenantID, shopDomain, token string) {
	t.Helper()
	require.NoError(t, stores.Save(context.Background(), &domain.StoreConnection{
		TenantID:    tenantID,
		ShopDomain:  shopDomain,
		AccessToken: token,
	}))
}

// TestSyncTenantMirrorsPaginatedCollections runs a full cycle against a mock
// platform that serves products and orders across two cursor pages.
func TestSyncTenantMirrorsPaginatedCollections(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("page_info")
		switch {
		case strings.HasSuffix(r.URL.Path, "/products.json"):
			if cursor == "" {
				w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-10/products.json?page_info=p2>; rel="next"`, srv.URL))
				fmt.Fprint(w, `{"products": [{"id": 11, "title": "Widget", "variants": [{"price": "5.00", "sku": "W-1"}]}]}`)
				return
			}
			fmt.Fprint(w, `{"products": [{"id": 12, "title": "Gadget", "variants": [{"price": "7.50", "sku": "G-1"}]}]}`)
		case strings.HasSuffix(r.URL.Path, "/customers.json"):
			fmt.Fprint(w, `{"customers": [{"id": 21, "email": "ann@example.com", "total_spent": "70.00"}]}`)
		case strings.HasSuffix(r.URL.Path, "/orders.json"):
			if cursor == "" {
				w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-10/orders.json?page_info=o2>; rel="next"`, srv.URL))
				fmt.Fprint(w, `{"orders": [{"id": 31, "total_price": "10.00"}, {"id": 32, "total_price": "20.00"}]}`)
				return
			}
			fmt.Fprint(w, `{"orders": [{"id": 33, "total_price": "40.00", "currency": "EUR"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := shopify.NewClient(zerolog.Nop(),
		shopify.WithScheme("http"),
		shopify.WithPageDelay(0),
		shopify.WithHTTPClient(srv.Client()),
	)

	stores := newFakeStores()
	mirror := newFakeMirror()
	shop := strings.TrimPrefix(srv.URL, "http://")
	seedConnection(t, stores, "tenant-1", shop, "token-abc")

	svc := application.NewSyncService(stores, mirror, fetcher, nil, nil, 0, zerolog.Nop())

	before := time.Now()
	receipt, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1", ShopDomain: shop})
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, 2, receipt.Products)
	assert.Equal(t, 1, receipt.Customers)
	assert.Equal(t, 3, receipt.Orders)

	assert.Equal(t, "Gadget", mirror.product("tenant-1", "12").Title)
	assert.Equal(t, "ann@example.com", mirror.customer("tenant-1", "21").Email)
	assert.Equal(t, "EUR", mirror.order("tenant-1", "33").Currency)
	assert.Equal(t, "USD", mirror.order("tenant-1", "31").Currency)

	last := stores.lastSync("tenant-1")
	require.NotNil(t, last, "a successful cycle must advance the sync timestamp")
	assert.False(t, last.Before(before))
}

func TestSyncTenantFailsWithoutCredential(t *testing.T) {
	svc := application.NewSyncService(newFakeStores(), newFakeMirror(), &fakeFetcher{}, nil, nil, 0, zerolog.Nop())

	_, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})
	require.ErrorIs(t, err, domain.ErrCredentialMissing)

	// An empty token is as unusable as a missing connection.
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-2", "shop.myshopify.com", "")
	svc = application.NewSyncService(stores, newFakeMirror(), &fakeFetcher{}, nil, nil, 0, zerolog.Nop())
	_, err = svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-2"})
	require.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestSyncTenantFailsWholeCycleWhenOneFetchFails(t *testing.T) {
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-1", "shop.myshopify.com", "token")

	mirror := newFakeMirror()
	fetcher := &fakeFetcher{
		collections: map[string][]json.RawMessage{
			ports.ResourceProducts:  rawItems(`{"id": 1}`),
			ports.ResourceCustomers: rawItems(`{"id": 2}`),
		},
		failures: map[string]error{
			ports.ResourceOrders: errors.New("orders page request failed: 502"),
		},
	}

	svc := application.NewSyncService(stores, mirror, fetcher, nil, nil, 0, zerolog.Nop())
	receipt, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})
	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Zero(t, mirror.totalRecords(), "nothing is reconciled when any fetch fails")
	assert.Nil(t, stores.lastSync("tenant-1"), "a failed cycle must not advance the sync timestamp")
}

func TestSyncTenantSkipsMalformedItems(t *testing.T) {
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-1", "shop.myshopify.com", "token")

	mirror := newFakeMirror()
	fetcher := &fakeFetcher{
		collections: map[string][]json.RawMessage{
			ports.ResourceProducts:  rawItems(`{"id": 1, "title": "OK"}`, `{"title": "no id"}`),
			ports.ResourceCustomers: rawItems(`{"id": 2}`),
			ports.ResourceOrders:    rawItems(`{"id": 3, "total_price": "1.00"}`),
		},
	}

	svc := application.NewSyncService(stores, mirror, fetcher, nil, nil, 0, zerolog.Nop())
	receipt, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Products, "malformed items are skipped, not fatal")
	assert.Equal(t, 1, receipt.Customers)
	assert.Equal(t, 1, receipt.Orders)
}

func TestSyncTenantIsIdempotent(t *testing.T) {
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-1", "shop.myshopify.com", "token")

	mirror := newFakeMirror()
	fetcher := &fakeFetcher{
		collections: map[string][]json.RawMessage{
			ports.ResourceProducts:  rawItems(`{"id": 1, "title": "Widget"}`),
			ports.ResourceCustomers: rawItems(`{"id": 2}`),
			ports.ResourceOrders:    rawItems(`{"id": 3}`),
		},
	}

	svc := application.NewSyncService(stores, mirror, fetcher, nil, nil, 0, zerolog.Nop())
	for i := 0; i < 3; i++ {
		_, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, mirror.totalRecords(), "repeated cycles overwrite, never duplicate")
}

func TestSyncTenantRegistersWebhooksOnce(t *testing.T) {
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-1", "shop.myshopify.com", "token")

	registrar := &fakeRegistrar{}
	fetcher := &fakeFetcher{}
	svc := application.NewSyncService(stores, newFakeMirror(), fetcher, registrar, nil, 0, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, registrar.calls, "registration is skipped once the store is configured")
	conn, err := stores.GetByTenantID(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.True(t, conn.WebhooksConfigured)
}

func TestSyncTenantRegistrationFailureIsNotFatal(t *testing.T) {
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-1", "shop.myshopify.com", "token")

	registrar := &fakeRegistrar{err: errors.New("webhook api unavailable")}
	svc := application.NewSyncService(stores, newFakeMirror(), &fakeFetcher{}, registrar, nil, 0, zerolog.Nop())

	_, err := svc.SyncTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})
	require.NoError(t, err)

	conn, err := stores.GetByTenantID(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.False(t, conn.WebhooksConfigured)
}
