package repository

import (
	"context"

	"github.com/fehmi19/cheebo/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderNumberFunc produces a candidate order number
type OrderNumberFunc func() string

// orderNumberAttempts bounds regeneration after an order number collision
const orderNumberAttempts = 5

// MongoOrderRepository stores orders in the orders collection
type MongoOrderRepository struct {
	coll       *mongo.Collection
	nextNumber OrderNumberFunc
}

func NewOrderRepository(db *mongo.Database, nextNumber OrderNumberFunc) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(OrdersCollection), nextNumber: nextNumber}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// Create assigns an order number and inserts o. The unique index on
// orderNumber rejects collisions, in which case a fresh number is drawn.
func (r *MongoOrderRepository) Create(ctx context.Context, o *models.Order) error {
	ts := now()
	o.CreatedAt, o.UpdatedAt = ts, ts
	o.Version = 1
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		o.ID = primitive.NewObjectID()
		o.OrderNumber = r.nextNumber()
		_, err := r.coll.InsertOne(ctx, o)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return mapErr(err, "insert order")
		}
	}
	return errors.Wrapf(ErrDuplicateKey, "no free order number after %d attempts", orderNumberAttempts)
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return findByID[models.Order](ctx, r.coll, id)
}

// List returns every order, newest first
func (r *MongoOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.coll, bson.M{}, newestFirst())
}

// ListByUser returns userID's orders, newest first
func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.coll, bson.M{"user": userID}, newestFirst())
}

// Update saves o if nobody else changed it since it was read
func (r *MongoOrderRepository) Update(ctx context.Context, o *models.Order) error {
	expected := o.Version
	o.Version, o.UpdatedAt = expected+1, now()
	if err := replaceVersioned(ctx, r.coll, o.ID, expected, o); err != nil {
		o.Version = expected
		return err
	}
	return nil
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id})
}

// Stats counts orders per headline status and sums delivered revenue
func (r *MongoOrderRepository) Stats(ctx context.Context) (*OrderStats, error) {
	countStatus := func(status models.OrderStatus) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"totalOrders":     bson.M{"$sum": 1},
			"pendingOrders":   countStatus(models.OrderPending),
			"deliveredOrders": countStatus(models.OrderDelivered),
			"cancelledOrders": countStatus(models.OrderCancelled),
			"totalRevenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.OrderDelivered}}, "$totalAmount", 0,
			}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(err, "aggregate order stats")
	}
	defer cursor.Close(ctx)

	var rows []OrderStats
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, mapErr(err, "decode order stats")
	}
	if len(rows) == 0 {
		return &OrderStats{}, nil
	}
	return &rows[0], nil
}
