package repository

import (
	"context"

	"github.com/fehmi19/cheebo/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository stores users in the users collection
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

// Create inserts u; a taken email yields ErrDuplicateKey
func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	ts := now()
	u.ID = primitive.NewObjectID()
	u.Email = models.NormalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = ts, ts
	u.Version = 1
	_, err := r.coll.InsertOne(ctx, u)
	return mapErr(err, "insert user")
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findByID[models.User](ctx, r.coll, id)
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&u)
	if err != nil {
		return nil, mapErr(err, "find user by email")
	}
	return &u, nil
}

// List returns every user, newest first
func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// Update saves u if nobody else changed it since it was read
func (r *MongoUserRepository) Update(ctx context.Context, u *models.User) error {
	expected := u.Version
	u.Version, u.UpdatedAt = expected+1, now()
	if err := replaceVersioned(ctx, r.coll, u.ID, expected, u); err != nil {
		u.Version = expected
		return err
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id})
}
