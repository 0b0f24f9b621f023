package ports

import "shopmirror/internal/domain"

// MetricsRecorder counts sync and webhook outcomes for operational
// dashboards.
type MetricsRecorder interface {
	SyncCycle(status string)
	RecordsSynced(resource string, n int)
	WebhookEvent(outcome string)
}

// EventPublisher fans applied webhook events out to in-process consumers.
type EventPublisher interface {
	Publish(event *domain.WebhookEvent)
}
