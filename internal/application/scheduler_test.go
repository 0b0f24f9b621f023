package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmirror/internal/application"
	"shopmirror/internal/domain"
	"shopmirror/internal/ports"
)

func TestRunOnceIsolatesTenantFailures(t *testing.T) {
	ctx := context.Background()

	tenants := &fakeTenants{}
	require.NoError(t, tenants.Save(ctx, &domain.Tenant{ID: "tenant-ok", ShopDomain: "ok.myshopify.com"}))
	require.NoError(t, tenants.Save(ctx, &domain.Tenant{ID: "tenant-broken", ShopDomain: "broken.myshopify.com"}))
	require.NoError(t, tenants.Save(ctx, &domain.Tenant{ID: "tenant-ok-2", ShopDomain: "ok2.myshopify.com"}))

	// tenant-broken has no store connection, so its sync fails.
	stores := newFakeStores()
	seedConnection(t, stores, "tenant-ok", "ok.myshopify.com", "token-a")
	seedConnection(t, stores, "tenant-ok-2", "ok2.myshopify.com", "token-b")

	mirror := newFakeMirror()
	fetcher := &fakeFetcher{
		collections: map[string][]json.RawMessage{
			ports.ResourceProducts: rawItems(`{"id": 1, "title": "Widget"}`),
		},
	}

	svc := application.NewSyncService(stores, mirror, fetcher, nil, nil, 0, zerolog.Nop())
	scheduler := application.NewScheduler(tenants, svc, 0, zerolog.Nop())

	report := scheduler.RunOnce(ctx)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	// The tenant after the failing one still synced.
	assert.NotNil(t, mirror.product("tenant-ok-2", "1"))
	assert.NotNil(t, stores.lastSync("tenant-ok-2"))
}

func TestRunOnceStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tenants := &fakeTenants{}
	require.NoError(t, tenants.Save(ctx, &domain.Tenant{ID: "tenant-1"}))

	stores := newFakeStores()
	seedConnection(t, stores, "tenant-1", "shop.myshopify.com", "token")

	svc := application.NewSyncService(stores, newFakeMirror(), &fakeFetcher{}, nil, nil, 0, zerolog.Nop())
	scheduler := application.NewScheduler(tenants, svc, 0, zerolog.Nop())

	cancel()
	report := scheduler.RunOnce(ctx)
	assert.Equal(t, 1, report.Total)
	assert.Zero(t, report.Succeeded, "no tenant is synced after shutdown begins")
	assert.Zero(t, report.Failed)
}
