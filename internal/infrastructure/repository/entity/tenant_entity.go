package entity

import (
	"time"

	"shopmirror/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoTenantDoc represents a tenant in MongoDB
type MongoTenantDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopName   string             `bson:"shopName"`
	ShopDomain string             `bson:"shopDomain"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoTenantDoc) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:         d.ID.Hex(),
		ShopName:   d.ShopName,
		ShopDomain: d.ShopDomain,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoTenantDocFromDomain converts a domain entity to a MongoDB document
func MongoTenantDocFromDomain(t *domain.Tenant) *MongoTenantDoc {
	doc := &MongoTenantDoc{
		ShopName:   t.ShopName,
		ShopDomain: t.ShopDomain,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}

	if t.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(t.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}

// MongoStoreConnectionDoc represents a store connection in MongoDB
type MongoStoreConnectionDoc struct {
	TenantID           string     `bson:"tenantId"`
	ShopDomain         string     `bson:"shopDomain"`
	AccessToken        string     `bson:"accessToken"`
	WebhooksConfigured bool       `bson:"webhooksConfigured"`
	LastSyncAt         *time.Time `bson:"lastSyncAt"`
	CreatedAt          time.Time  `bson:"createdAt"`
	UpdatedAt          time.Time  `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoStoreConnectionDoc) ToDomain() *domain.StoreConnection {
	return &domain.StoreConnection{
		TenantID:           d.TenantID,
		ShopDomain:         d.ShopDomain,
		AccessToken:        d.AccessToken,
		WebhooksConfigured: d.WebhooksConfigured,
		LastSyncAt:         d.LastSyncAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// MongoStoreConnectionDocFromDomain converts a domain entity to a MongoDB document
func MongoStoreConnectionDocFromDomain(c *domain.StoreConnection) *MongoStoreConnectionDoc {
	return &MongoStoreConnectionDoc{
		TenantID:           c.TenantID,
		ShopDomain:         c.ShopDomain,
		AccessToken:        c.AccessToken,
		WebhooksConfigured: c.WebhooksConfigured,
		LastSyncAt:         c.LastSyncAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
