package domain

import "time"

// Mirrored records are whole-record snapshots of remote resources, keyed by
// (TenantID, ExternalID). Upserts overwrite in place; there is at most one
// logical record per key and the last applied snapshot wins.

// Product mirrors a remote catalog item.
type Product struct {
	TenantID   string  `json:"tenant_id" bson:"tenant_id"`
	ExternalID string  `json:"external_id" bson:"external_id"`
	Title      string  `json:"title" bson:"title"`
	Price      float64 `json:"price" bson:"price"`
	SKU        string  `json:"sku" bson:"sku"`
	Status     string  `json:"status" bson:"status"`
}

// Customer mirrors a remote customer.
type Customer struct {
	TenantID   string  `json:"tenant_id" bson:"tenant_id"`
	ExternalID string  `json:"external_id" bson:"external_id"`
	Email      string  `json:"email" bson:"email"`
	FirstName  string  `json:"first_name" bson:"first_name"`
	LastName   string  `json:"last_name" bson:"last_name"`
	TotalSpent float64 `json:"total_spent" bson:"total_spent"`
}

// Order mirrors a remote order. No foreign key to Customer or Product is
// enforced; an order may reference a customer not yet mirrored.
type Order struct {
	TenantID   string    `json:"tenant_id" bson:"tenant_id"`
	ExternalID string    `json:"external_id" bson:"external_id"`
	Total      float64   `json:"total" bson:"total"`
	Currency   string    `json:"currency" bson:"currency"`
	Status     string    `json:"status" bson:"status"`
	PlacedAt   time.Time `json:"placed_at" bson:"placed_at"`
}

// SyncReceipt reports what one full sync cycle reconciled for a tenant.
type SyncReceipt struct {
	Products    int       `json:"products"`
	Customers   int       `json:"customers"`
	Orders      int       `json:"orders"`
	CompletedAt time.Time `json:"completed_at"`
}

// DailyRevenue is one day's order count and revenue for a tenant.
type DailyRevenue struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// TenantReport aggregates mirror reads for reporting consumers.
type TenantReport struct {
	TotalProducts  int64           `json:"total_products"`
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   float64         `json:"total_revenue"`
	TopCustomers   []*Customer     `json:"top_customers"`
	OrdersByDate   []*DailyRevenue `json:"orders_by_date"`
}
