package ports

import (
	"context"
	"encoding/json"
)

// Resource names understood by the remote platform's admin API. They double
// as the envelope key of each page response ({"products": [...]}).
const (
	ResourceProducts  = "products"
	ResourceCustomers = "customers"
	ResourceOrders    = "orders"
)

// CollectionFetcher retrieves one full resource collection for a shop,
// following cursor pagination until exhaustion. max > 0 caps (and
// truncates) the result. Any page failure fails the whole fetch; no
// partial collection is ever returned.
type CollectionFetcher interface {
	FetchAll(ctx context.Context, shop, accessToken, resource string, max int) ([]json.RawMessage, error)
}

// WebhookRegistrar configures the remote platform to push incremental
// updates for a connected store.
type WebhookRegistrar interface {
	EnsureWebhooks(ctx context.Context, shop, accessToken string) error
}

// SignatureVerifier authenticates a webhook body against the header-supplied
// signature. Verification runs over the exact raw bytes, before parsing.
type SignatureVerifier interface {
	Verify(payload []byte, signature string) error
}

// DeliveryDeduper tracks webhook delivery IDs already applied. Seen is a
// read-only check; MarkApplied records the ID only once processing has
// succeeded, so a failed delivery stays unmarked and its retry is processed.
// Best effort: implementations return false on backend failure so the event
// is processed (upserts are idempotent, duplicates are safe).
type DeliveryDeduper interface {
	Seen(ctx context.Context, deliveryID string) bool
	MarkApplied(ctx context.Context, deliveryID string)
}
