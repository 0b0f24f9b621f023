package ports

import (
	"context"
	"time"

	"shopmirror/internal/domain"
)

// TenantRepository defines the interface for tenant persistence.
type TenantRepository interface {
	Save(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetByShopDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)
}

// StoreConnectionRepository defines the interface for store credential
// persistence. A nil connection (no error) means the tenant has no store.
type StoreConnectionRepository interface {
	Save(ctx context.Context, conn *domain.StoreConnection) error
	GetByTenantID(ctx context.Context, tenantID string) (*domain.StoreConnection, error)
	UpdateLastSync(ctx context.Context, tenantID string, at time.Time) error
	SetWebhooksConfigured(ctx context.Context, tenantID string, configured bool) error
}

// MirrorRepository is the keyed upsert/read contract both write paths
// converge on. Every upsert is keyed by (tenantID, externalID) and
// overwrites the whole record; reads serve reporting consumers.
type MirrorRepository interface {
	UpsertProduct(ctx context.Context, product *domain.Product) error
	UpsertCustomer(ctx context.Context, customer *domain.Customer) error
	UpsertOrder(ctx context.Context, order *domain.Order) error

	CountProducts(ctx context.Context, tenantID string) (int64, error)
	CountCustomers(ctx context.Context, tenantID string) (int64, error)
	CountOrders(ctx context.Context, tenantID string) (int64, error)
	SumOrderTotals(ctx context.Context, tenantID string) (float64, error)
	TopCustomers(ctx context.Context, tenantID string, limit int64) ([]*domain.Customer, error)
	OrdersByDate(ctx context.Context, tenantID string) ([]*domain.DailyRevenue, error)
}
