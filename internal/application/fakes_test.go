package application_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"shopmirror/internal/domain"
)

func recordKey(tenantID, externalID string) string {
	return tenantID + "/" + externalID
}

// fakeMirror is an in-memory MirrorRepository keyed exactly like the real
// store: one record per (tenantID, externalID).
type fakeMirror struct {
	mu        sync.Mutex
	products  map[string]*domain.Product
	customers map[string]*domain.Customer
	orders    map[string]*domain.Order
	failWith  error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		products:  make(map[string]*domain.Product),
		customers: make(map[string]*domain.Customer),
		orders:    make(map[string]*domain.Order),
	}
}

func (m *fakeMirror) UpsertProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cp := *p
	m.products[recordKey(p.TenantID, p.ExternalID)] = &cp
	return nil
}

func (m *fakeMirror) UpsertCustomer(_ context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cp := *c
	m.customers[recordKey(c.TenantID, c.ExternalID)] = &cp
	return nil
}

func (m *fakeMirror) UpsertOrder(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cp := *o
	m.orders[recordKey(o.TenantID, o.ExternalID)] = &cp
	return nil
}

func (m *fakeMirror) CountProducts(_ context.Context, tenantID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *fakeMirror) CountCustomers(_ context.Context, tenantID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.customers {
		if c.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *fakeMirror) CountOrders(_ context.Context, tenantID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.orders {
		if o.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *fakeMirror) SumOrderTotals(_ context.Context, tenantID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, o := range m.orders {
		if o.TenantID == tenantID {
			sum += o.Total
		}
	}
	return sum, nil
}

func (m *fakeMirror) OrdersByDate(_ context.Context, tenantID string) ([]*domain.DailyRevenue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDate := make(map[string]*domain.DailyRevenue)
	for _, o := range m.orders {
		if o.TenantID != tenantID {
			continue
		}
		date := o.PlacedAt.Format("2006-01-02")
		day, ok := byDate[date]
		if !ok {
			day = &domain.DailyRevenue{Date: date}
			byDate[date] = day
		}
		day.Orders++
		day.Revenue += o.Total
	}
	var series []*domain.DailyRevenue
	for _, day := range byDate {
		series = append(series, day)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series, nil
}

func (m *fakeMirror) TopCustomers(_ context.Context, tenantID string, limit int64) ([]*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var customers []*domain.Customer
	for _, c := range m.customers {
		if c.TenantID == tenantID {
			cp := *c
			customers = append(customers, &cp)
		}
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].TotalSpent > customers[j].TotalSpent
	})
	if int64(len(customers)) > limit {
		customers = customers[:limit]
	}
	return customers, nil
}

func (m *fakeMirror) failUpsertsWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *fakeMirror) totalRecords() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products) + len(m.customers) + len(m.orders)
}

func (m *fakeMirror) product(tenantID, externalID string) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[recordKey(tenantID, externalID)]
}

func (m *fakeMirror) customer(tenantID, externalID string) *domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[recordKey(tenantID, externalID)]
}

func (m *fakeMirror) order(tenantID, externalID string) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[recordKey(tenantID, externalID)]
}

// fakeTenants is an in-memory TenantRepository with stable List order.
type fakeTenants struct {
	mu      sync.Mutex
	tenants []*domain.Tenant
}

func (f *fakeTenants) Save(_ context.Context, t *domain.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenants = append(f.tenants, t)
	return nil
}

func (f *fakeTenants) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTenants) GetByShopDomain(_ context.Context, shopDomain string) (*domain.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.ShopDomain == shopDomain {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTenants) List(_ context.Context) ([]*domain.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Tenant, len(f.tenants))
	copy(out, f.tenants)
	return out, nil
}

// fakeStores is an in-memory StoreConnectionRepository.
type fakeStores struct {
	mu    sync.Mutex
	conns map[string]*domain.StoreConnection
}

func newFakeStores() *fakeStores {
	return &fakeStores{conns: make(map[string]*domain.StoreConnection)}
}

func (f *fakeStores) Save(_ context.Context, conn *domain.StoreConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *conn
	f.conns[conn.TenantID] = &cp
	return nil
}

func (f *fakeStores) GetByTenantID(_ context.Context, tenantID string) (*domain.StoreConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *conn
	return &cp, nil
}

func (f *fakeStores) UpdateLastSync(_ context.Context, tenantID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[tenantID]
	if !ok {
		return fmt.Errorf("no connection for tenant %s", tenantID)
	}
	conn.LastSyncAt = &at
	return nil
}

func (f *fakeStores) SetWebhooksConfigured(_ context.Context, tenantID string, configured bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[tenantID]
	if !ok {
		return fmt.Errorf("no connection for tenant %s", tenantID)
	}
	conn.WebhooksConfigured = configured
	return nil
}

func (f *fakeStores) lastSync(tenantID string) *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[tenantID]
	if !ok {
		return nil
	}
	return conn.LastSyncAt
}

// fakeFetcher serves canned collections per resource, optionally failing
// some of them.
type fakeFetcher struct {
	collections map[string][]json.RawMessage
	failures    map[string]error
}

func (f *fakeFetcher) FetchAll(_ context.Context, _, _, resource string, max int) ([]json.RawMessage, error) {
	if err := f.failures[resource]; err != nil {
		return nil, err
	}
	items := f.collections[resource]
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	return items, nil
}

// fakeRegistrar records webhook registration calls.
type fakeRegistrar struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRegistrar) EnsureWebhooks(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

// fakeDeduper remembers delivery IDs marked applied.
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeDeduper(seen ...string) *fakeDeduper {
	f := &fakeDeduper{seen: make(map[string]bool)}
	for _, id := range seen {
		f.seen[id] = true
	}
	return f
}

func (f *fakeDeduper) Seen(_ context.Context, deliveryID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[deliveryID]
}

func (f *fakeDeduper) MarkApplied(_ context.Context, deliveryID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[deliveryID] = true
}

func rawItems(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		out = append(out, json.RawMessage(it))
	}
	return out
}
