package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	PetsCollection     = "pets"
	VetsCollection     = "vets"
	PostsCollection    = "posts"
	TasksCollection    = "tasks"
)

var now = func() time.Time { return time.Now().UTC() }

// NewMongoStore builds every repository on db
func NewMongoStore(db *mongo.Database, nextOrderNumber OrderNumberFunc) *Store {
	return &Store{
		Users:    NewUserRepository(db),
		Products: NewProductRepository(db),
		Orders:   NewOrderRepository(db, nextOrderNumber),
		Pets:     NewPetRepository(db),
		Vets:     NewVetRepository(db),
		Posts:    NewPostRepository(db),
		Tasks:    NewTaskRepository(db),
	}
}

// mapErr converts driver errors into the package sentinels and annotates the rest with op
func mapErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Wrap(ErrDuplicateKey, op)
	default:
		return errors.Wrap(err, op)
	}
}

// versionFilter matches id at the expected version. Documents written before
// versioning existed have no version field and count as version 0.
func versionFilter(id primitive.ObjectID, expected int64) bson.M {
	if expected == 0 {
		return bson.M{"_id": id, "$or": bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": id, "version": expected}
}

// replaceVersioned replaces the document only if its version is still
// expected. doc must already carry the incremented version.
func replaceVersioned(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, expected int64, doc any) error {
	return replaceScoped(ctx, coll, nil, id, expected, doc)
}

// replaceScoped is replaceVersioned limited to documents also matching
// scope. A document outside scope is reported as ErrNotFound.
func replaceScoped(ctx context.Context, coll *mongo.Collection, scope bson.M, id primitive.ObjectID, expected int64, doc any) error {
	filter, lookup := versionFilter(id, expected), bson.M{"_id": id}
	if len(scope) > 0 {
		filter = bson.M{"$and": bson.A{filter, scope}}
		lookup = bson.M{"$and": bson.A{lookup, scope}}
	}
	res, err := coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return mapErr(err, "replace "+coll.Name())
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, lookup)
	if err != nil {
		return mapErr(err, "count "+coll.Name())
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapErr(err, "find "+coll.Name())
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr(err, "find "+coll.Name())
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, mapErr(err, "decode "+coll.Name())
	}
	return items, nil
}

// findPage returns one page of documents matching filter and the total match count
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter any, sort bson.D, page Page) ([]T, int64, error) {
	opts := options.Find().SetSort(sort).SetSkip(page.Skip()).SetLimit(int64(page.Limit))
	items, err := findAll[T](ctx, coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr(err, "count "+coll.Name())
	}
	return items, total, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return mapErr(err, "delete "+coll.Name())
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
