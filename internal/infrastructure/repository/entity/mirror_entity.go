package entity

import (
	"time"

	"shopmirror/internal/domain"
)

// MongoProductDoc represents a mirrored product in MongoDB
type MongoProductDoc struct {
	TenantID   string    `bson:"tenantId"`
	ExternalID string    `bson:"externalId"`
	Title      string    `bson:"title"`
	Price      float64   `bson:"price"`
	SKU        string    `bson:"sku"`
	Status     string    `bson:"status"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoProductDoc) ToDomain() *domain.Product {
	return &domain.Product{
		TenantID:   d.TenantID,
		ExternalID: d.ExternalID,
		Title:      d.Title,
		Price:      d.Price,
		SKU:        d.SKU,
		Status:     d.Status,
	}
}

// MongoProductDocFromDomain converts a domain entity to a MongoDB document
func MongoProductDocFromDomain(p *domain.Product) *MongoProductDoc {
	return &MongoProductDoc{
		TenantID:   p.TenantID,
		ExternalID: p.ExternalID,
		Title:      p.Title,
		Price:      p.Price,
		SKU:        p.SKU,
		Status:     p.Status,
	}
}

// MongoCustomerDoc represents a mirrored customer in MongoDB
type MongoCustomerDoc struct {
	TenantID   string    `bson:"tenantId"`
	ExternalID string    `bson:"externalId"`
	Email      string    `bson:"email"`
	FirstName  string    `bson:"firstName"`
	LastName   string    `bson:"lastName"`
	TotalSpent float64   `bson:"totalSpent"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoCustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		TenantID:   d.TenantID,
		ExternalID: d.ExternalID,
		Email:      d.Email,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		TotalSpent: d.TotalSpent,
	}
}

// MongoCustomerDocFromDomain converts a domain entity to a MongoDB document
func MongoCustomerDocFromDomain(c *domain.Customer) *MongoCustomerDoc {
	return &MongoCustomerDoc{
		TenantID:   c.TenantID,
		ExternalID: c.ExternalID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		TotalSpent: c.TotalSpent,
	}
}

// MongoOrderDoc represents a mirrored order in MongoDB
type MongoOrderDoc struct {
	TenantID   string    `bson:"tenantId"`
	ExternalID string    `bson:"externalId"`
	Total      float64   `bson:"total"`
	Currency   string    `bson:"currency"`
	Status     string    `bson:"status"`
	PlacedAt   time.Time `bson:"placedAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoOrderDoc) ToDomain() *domain.Order {
	return &domain.Order{
		TenantID:   d.TenantID,
		ExternalID: d.ExternalID,
		Total:      d.Total,
		Currency:   d.Currency,
		Status:     d.Status,
		PlacedAt:   d.PlacedAt,
	}
}

// MongoOrderDocFromDomain converts a domain entity to a MongoDB document
func MongoOrderDocFromDomain(o *domain.Order) *MongoOrderDoc {
	return &MongoOrderDoc{
		TenantID:   o.TenantID,
		ExternalID: o.ExternalID,
		Total:      o.Total,
		Currency:   o.Currency,
		Status:     o.Status,
		PlacedAt:   o.PlacedAt,
	}
}
