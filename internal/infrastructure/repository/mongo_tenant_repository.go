package repository

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/repository/entity"
	"shopmirror/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTenantRepository implements TenantRepository using MongoDB
type MongoTenantRepository struct {
	collection *mongo.Collection
}

// NewMongoTenantRepository creates a new MongoDB tenant repository
func NewMongoTenantRepository(db *mongo.Database) ports.TenantRepository {
	return &MongoTenantRepository{
		collection: db.Collection("tenants"),
	}
}

// Save saves or updates a tenant, keyed by shop domain
func (r *MongoTenantRepository) Save(ctx context.Context, tenant *domain.Tenant) error {
	doc := entity.MongoTenantDocFromDomain(tenant)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
		tenant.ID = doc.ID.Hex()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shopDomain": tenant.ShopDomain}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by its identifier
func (r *MongoTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc entity.MongoTenantDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetByShopDomain retrieves a tenant by its shop domain
func (r *MongoTenantRepository) GetByShopDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	var doc entity.MongoTenantDoc
	err := r.collection.FindOne(ctx, bson.M{"shopDomain": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant by shop domain: %w", err)
	}

	return doc.ToDomain(), nil
}

// List retrieves all tenants
func (r *MongoTenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var tenants []*domain.Tenant
	for cursor.Next(ctx) {
		var doc entity.MongoTenantDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode tenant: %w", err)
		}
		tenants = append(tenants, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return tenants, nil
}

// MongoStoreConnectionRepository implements StoreConnectionRepository using MongoDB
type MongoStoreConnectionRepository struct {
	collection *mongo.Collection
}

// NewMongoStoreConnectionRepository creates a new MongoDB store connection repository
func NewMongoStoreConnectionRepository(db *mongo.Database) ports.StoreConnectionRepository {
	return &MongoStoreConnectionRepository{
		collection: db.Collection("store_connections"),
	}
}

// Save saves or updates a store connection, keyed by tenant
func (r *MongoStoreConnectionRepository) Save(ctx context.Context, conn *domain.StoreConnection) error {
	doc := entity.MongoStoreConnectionDocFromDomain(conn)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"tenantId": conn.TenantID}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save store connection: %w", err)
	}
	return nil
}

// GetByTenantID retrieves the active store connection for a tenant
func (r *MongoStoreConnectionRepository) GetByTenantID(ctx context.Context, tenantID string) (*domain.StoreConnection, error) {
	var doc entity.MongoStoreConnectionDoc
	err := r.collection.FindOne(ctx, bson.M{"tenantId": tenantID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store connection: %w", err)
	}

	return doc.ToDomain(), nil
}

// UpdateLastSync stamps the tenant's last successful full-sync time
func (r *MongoStoreConnectionRepository) UpdateLastSync(ctx context.Context, tenantID string, at time.Time) error {
	filter := bson.M{"tenantId": tenantID}
	update := bson.M{"$set": bson.M{"lastSyncAt": at, "updatedAt": time.Now()}}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update last sync: %w", err)
	}
	return nil
}

// SetWebhooksConfigured flips the tenant's webhook-configured flag
func (r *MongoStoreConnectionRepository) SetWebhooksConfigured(ctx context.Context, tenantID string, configured bool) error {
	filter := bson.M{"tenantId": tenantID}
	update := bson.M{"$set": bson.M{"webhooksConfigured": configured, "updatedAt": time.Now()}}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set webhooks configured: %w", err)
	}
	return nil
}
