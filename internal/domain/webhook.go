package domain

import "time"

// WebhookEvent is a verified incremental update pushed by the remote
// platform, already resolved to a tenant.
type WebhookEvent struct {
	Topic      string    `json:"topic"`
	Shop       string    `json:"shop"`
	TenantID   string    `json:"tenant_id"`
	DeliveryID string    `json:"delivery_id"`
	Payload    []byte    `json:"payload"`
	ReceivedAt time.Time `json:"received_at"`
}
