package application

import (
	"context"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

const topCustomerLimit = 5

// ReportingService serves aggregate reads over the mirror for dashboard
// consumers. It only consumes the repository's read contract.
type ReportingService struct {
	mirror ports.MirrorRepository
	logger zerolog.Logger
}

// NewReportingService creates a reporting service.
func NewReportingService(mirror ports.MirrorRepository, logger zerolog.Logger) *ReportingService {
	return &ReportingService{
		mirror: mirror,
		logger: logger,
	}
}

// Summary aggregates a tenant's mirror: record counts, total revenue, the
// highest-spending customers and a per-day order/revenue series.
func (r *ReportingService) Summary(ctx context.Context, tenantID string) (*domain.TenantReport, error) {
	products, err := r.mirror.CountProducts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	customers, err := r.mirror.CountCustomers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	orders, err := r.mirror.CountOrders(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	revenue, err := r.mirror.SumOrderTotals(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum order totals: %w", err)
	}

	top, err := r.mirror.TopCustomers(ctx, tenantID, topCustomerLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top customers: %w", err)
	}

	byDate, err := r.mirror.OrdersByDate(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to group orders by date: %w", err)
	}

	return &domain.TenantReport{
		TotalProducts:  products,
		TotalCustomers: customers,
		TotalOrders:    orders,
		TotalRevenue:   revenue,
		TopCustomers:   top,
		OrdersByDate:   byDate,
	}, nil
}
