package repository

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/repository/entity"
	"shopmirror/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMirrorRepository implements MirrorRepository using MongoDB
type MongoMirrorRepository struct {
	productsCollection  *mongo.Collection
	customersCollection *mongo.Collection
	ordersCollection    *mongo.Collection
}

// NewMongoMirrorRepository creates a new MongoDB mirror repository
func NewMongoMirrorRepository(db *mongo.Database) *MongoMirrorRepository {
	return &MongoMirrorRepository{
		productsCollection:  db.Collection("products"),
		customersCollection: db.Collection("customers"),
		ordersCollection:    db.Collection("orders"),
	}
}

// EnsureIndexes creates the unique (tenantId, externalId) index on each
// mirror collection. Safe to call on every startup.
func (r *MongoMirrorRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "externalId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{r.productsCollection, r.customersCollection, r.ordersCollection} {
		if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func keyFilter(tenantID, externalID string) bson.M {
	return bson.M{"tenantId": tenantID, "externalId": externalID}
}

// UpsertProduct inserts or overwrites a product by (tenantId, externalId)
func (r *MongoMirrorRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	doc := entity.MongoProductDocFromDomain(product)
	doc.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": doc}

	_, err := r.productsCollection.UpdateOne(ctx, keyFilter(product.TenantID, product.ExternalID), update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// UpsertCustomer inserts or overwrites a customer by (tenantId, externalId)
func (r *MongoMirrorRepository) UpsertCustomer(ctx context.Context, customer *domain.Customer) error {
	doc := entity.MongoCustomerDocFromDomain(customer)
	doc.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": doc}

	_, err := r.customersCollection.UpdateOne(ctx, keyFilter(customer.TenantID, customer.ExternalID), update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

// UpsertOrder inserts or overwrites an order by (tenantId, externalId)
func (r *MongoMirrorRepository) UpsertOrder(ctx context.Context, order *domain.Order) error {
	doc := entity.MongoOrderDocFromDomain(order)
	doc.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	update := bson.M{"$set": doc}

	_, err := r.ordersCollection.UpdateOne(ctx, keyFilter(order.TenantID, order.ExternalID), update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}
	return nil
}

// CountProducts counts mirrored products for a tenant
func (r *MongoMirrorRepository) CountProducts(ctx context.Context, tenantID string) (int64, error) {
	return r.count(ctx, r.productsCollection, tenantID)
}

// CountCustomers counts mirrored customers for a tenant
func (r *MongoMirrorRepository) CountCustomers(ctx context.Context, tenantID string) (int64, error) {
	return r.count(ctx, r.customersCollection, tenantID)
}

// CountOrders counts mirrored orders for a tenant
func (r *MongoMirrorRepository) CountOrders(ctx context.Context, tenantID string) (int64, error) {
	return r.count(ctx, r.ordersCollection, tenantID)
}

func (r *MongoMirrorRepository) count(ctx context.Context, coll *mongo.Collection, tenantID string) (int64, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", coll.Name(), err)
	}
	return n, nil
}

// SumOrderTotals sums the monetary totals of a tenant's mirrored orders
func (r *MongoMirrorRepository) SumOrderTotals(ctx context.Context, tenantID string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenantId": tenantID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total"},
		}}},
	}

	cursor, err := r.ordersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum order totals: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode order total: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("cursor error: %w", err)
	}

	return result.Total, nil
}

// TopCustomers returns a tenant's customers ordered by total spend
func (r *MongoMirrorRepository) TopCustomers(ctx context.Context, tenantID string, limit int64) ([]*domain.Customer, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "totalSpent", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.customersCollection.Find(ctx, bson.M{"tenantId": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list top customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []*domain.Customer
	for cursor.Next(ctx) {
		var doc entity.MongoCustomerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode customer: %w", err)
		}
		customers = append(customers, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return customers, nil
}

// OrdersByDate groups a tenant's mirrored orders by placement day,
// ascending, with per-day order counts and revenue
func (r *MongoMirrorRepository) OrdersByDate(ctx context.Context, tenantID string) ([]*domain.DailyRevenue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenantId": tenantID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$placedAt"}},
			"orders":  bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.ordersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group orders by date: %w", err)
	}
	defer cursor.Close(ctx)

	var series []*domain.DailyRevenue
	for cursor.Next(ctx) {
		var row struct {
			Date    string  `bson:"_id"`
			Orders  int64   `bson:"orders"`
			Revenue float64 `bson:"revenue"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode daily revenue: %w", err)
		}
		series = append(series, &domain.DailyRevenue{Date: row.Date, Orders: row.Orders, Revenue: row.Revenue})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return series, nil
}

var _ ports.MirrorRepository = (*MongoMirrorRepository)(nil)
