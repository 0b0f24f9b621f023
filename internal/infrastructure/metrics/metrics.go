package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"shopmirror/internal/ports"
)

// Recorder holds the Prometheus instruments shared by the sync and webhook
// paths. A nil *Recorder is valid and records nothing, so tests can pass nil.
type Recorder struct {
	syncCycles    *prometheus.CounterVec
	recordsSynced *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
}

// NewRecorder creates and registers the mirror's metrics.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		syncCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopmirror_sync_cycles_total",
			Help: "Per-tenant full sync cycles by outcome.",
		}, []string{"status"}),
		recordsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopmirror_records_synced_total",
			Help: "Mirrored records written by the polling path, by resource.",
		}, []string{"resource"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopmirror_webhook_events_total",
			Help: "Inbound webhook deliveries by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.syncCycles, r.recordsSynced, r.webhookEvents)
	return r
}

// SyncCycle counts one completed sync cycle ("success" or "failure").
func (r *Recorder) SyncCycle(status string) {
	if r == nil {
		return
	}
	r.syncCycles.WithLabelValues(status).Inc()
}

// RecordsSynced counts records reconciled for one resource.
func (r *Recorder) RecordsSynced(resource string, n int) {
	if r == nil {
		return
	}
	r.recordsSynced.WithLabelValues(resource).Add(float64(n))
}

// WebhookEvent counts one inbound delivery outcome
// (applied, rejected, ignored, duplicate, failed).
func (r *Recorder) WebhookEvent(outcome string) {
	if r == nil {
		return
	}
	r.webhookEvents.WithLabelValues(outcome).Inc()
}

var _ ports.MetricsRecorder = (*Recorder)(nil)
