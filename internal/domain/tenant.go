package domain

import "time"

// Tenant represents one connected store. It is the isolation unit for
// everything the mirror holds: records, credentials and rate budgets.
type Tenant struct {
	ID         string    `json:"id" bson:"_id"`
	ShopName   string    `json:"shop_name" bson:"shop_name"`
	ShopDomain string    `json:"shop_domain" bson:"shop_domain"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// StoreConnection holds the active credential for a tenant's store.
// A tenant without a connection (or with an empty token) cannot be synced.
type StoreConnection struct {
	TenantID            string     `json:"tenant_id" bson:"tenant_id"`
	ShopDomain          string     `json:"shop_domain" bson:"shop_domain"`
	AccessToken         string     `json:"access_token" bson:"access_token"`
	WebhooksConfigured  bool       `json:"webhooks_configured" bson:"webhooks_configured"`
	LastSyncAt          *time.Time `json:"last_sync_at" bson:"last_sync_at"`
	CreatedAt           time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" bson:"updated_at"`
}
