package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func asc(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return d
}

// collectionIndexes lists the indexes each collection needs for uniqueness
// and for the listing queries.
var collectionIndexes = map[string][]mongo.IndexModel{
	UsersCollection: {
		{Keys: asc("email"), Options: options.Index().SetUnique(true)},
		{Keys: asc("role")},
	},
	ProductsCollection: {
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}}},
		{Keys: asc("category", "isAvailable")},
		{Keys: bson.D{{Key: "isFeatured", Value: 1}, {Key: "orderCount", Value: -1}}},
		{Keys: asc("price")},
		{Keys: bson.D{{Key: "averageRating", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	},
	OrdersCollection: {
		{Keys: asc("orderNumber"), Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: asc("status")},
	},
	PetsCollection: {
		{Keys: asc("identifiant"), Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: asc("espece", "statut")},
		{Keys: asc("proprietaire")},
	},
	VetsCollection: {
		{Keys: asc("email"), Options: options.Index().SetUnique(true)},
		{Keys: asc("numeroLicence"), Options: options.Index().SetUnique(true)},
		{Keys: asc("ville", "statut")},
	},
	PostsCollection: {
		{Keys: bson.D{{Key: "statut", Value: 1}, {Key: "dateCreation", Value: -1}}},
	},
	TasksCollection: {
		{Keys: bson.D{{Key: "utilisateur", Value: 1}, {Key: "dateModification", Value: -1}}},
	},
}

// EnsureIndexes creates any missing index; existing ones are left alone
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range collectionIndexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}
