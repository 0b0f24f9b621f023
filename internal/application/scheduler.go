package application

import (
	"context"
	"time"

	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultSyncInterval is how often the scheduler resynchronizes every tenant.
const DefaultSyncInterval = time.Hour

// BatchReport summarizes one scheduled pass over all tenants.
type BatchReport struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Scheduler drives periodic full resynchronization across all tenants.
// Tenants are synced strictly sequentially to bound the aggregate outbound
// request rate; a single tenant's failure never blocks the others.
type Scheduler struct {
	tenants  ports.TenantRepository
	sync     *SyncService
	interval time.Duration
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler. interval <= 0 uses DefaultSyncInterval.
func NewScheduler(tenants ports.TenantRepository, sync *SyncService, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{
		tenants:  tenants,
		sync:     sync,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks, executing one batch per interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("Sync scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Sync scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce resynchronizes every known tenant sequentially, isolating
// per-tenant failures, and reports the batch outcome.
func (s *Scheduler) RunOnce(ctx context.Context) BatchReport {
	s.logger.Info().Msg("Starting scheduled sync batch")

	var report BatchReport
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list tenants for sync batch")
		return report
	}
	report.Total = len(tenants)

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			s.logger.Warn().Msg("Sync batch interrupted by shutdown")
			return report
		}
		if _, err := s.sync.SyncTenant(ctx, tenant); err != nil {
			s.logger.Error().
				Err(err).
				Str("tenantId", tenant.ID).
				Str("shop", tenant.ShopDomain).
				Msg("Sync failed for tenant")
			report.Failed++
			continue
		}
		report.Succeeded++
	}

	s.logger.Info().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Scheduled sync batch completed")

	return report
}
