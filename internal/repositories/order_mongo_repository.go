package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shopapi/internal/models"
)

// MongoOrderRepository stores orders as documents and expands products with $lookup.
type MongoOrderRepository struct {
	Collection *mongo.Collection
	products   string
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		Collection: db.Collection(OrdersCollection),
		products:   ProductsCollection,
	}
}

// expandPipeline joins the referenced product into the "product" field; only the
// summary fields survive decoding. Orders pointing at a deleted product keep no
// "product" field.
func (r *MongoOrderRepository) expandPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: r.products},
			{Key: "localField", Value: "productId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (r *MongoOrderRepository) aggregate(ctx context.Context, match bson.M) ([]models.Order, error) {
	cursor, err := r.Collection.Aggregate(ctx, r.expandPipeline(match))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	orders, err := r.aggregate(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	orders, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &orders[0], nil
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Product = nil

	if _, err := r.Collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	set := bson.M{}
	if update.CustomerName != nil {
		set["customerName"] = *update.CustomerName
	}
	if update.ProductID != nil {
		set["productId"] = *update.ProductID
	}
	if update.Quantity != nil {
		set["quantity"] = *update.Quantity
	}
	if update.TotalAmount != nil {
		set["totalAmount"] = *update.TotalAmount
	}
	if update.Sender != nil {
		set["sender"] = *update.Sender
	}
	if update.Receiver != nil {
		set["receiver"] = *update.Receiver
	}
	return r.set(ctx, id, set)
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return r.set(ctx, id, bson.M{"status": status})
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.Collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) set(ctx context.Context, id string, set bson.M) (*models.Order, error) {
	set["updatedAt"] = time.Now().UTC().Truncate(time.Millisecond)

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}
