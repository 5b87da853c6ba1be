package repository

import (
	"context"

	"github.com/fehmi19/cheebo/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository stores the catalog in the products collection
type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(ProductsCollection)}
}

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	ts := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = ts, ts
	p.Version = 1
	if p.Images == nil {
		p.Images = []models.ProductImage{}
	}
	if p.Reviews == nil {
		p.Reviews = []models.ProductReview{}
	}
	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(err, "insert product")
}

// freshen clears stale new-item flags on products read from the store
func freshen(products []models.Product, err error) ([]models.Product, error) {
	ts := now()
	for i := range products {
		products[i].RefreshNewFlag(ts)
	}
	return products, err
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := findByID[models.Product](ctx, r.coll, id)
	if err != nil {
		return nil, err
	}
	p.RefreshNewFlag(now())
	return p, nil
}

func (r *MongoProductRepository) List(ctx context.Context, q ProductQuery, page Page) ([]models.Product, int64, error) {
	products, total, err := findPage[models.Product](ctx, r.coll, q.Filter(), ProductSort(q.Sort), page)
	products, err = freshen(products, err)
	return products, total, err
}

// Search runs a full-text query over name, description and tags, best match first
func (r *MongoProductRepository) Search(ctx context.Context, text string, limit int) ([]models.Product, error) {
	filter := bson.M{"$text": bson.M{"$search": text}, "isAvailable": true, "isActive": true}
	score := bson.M{"score": bson.M{"$meta": "textScore"}}
	opts := options.Find().SetProjection(score).SetSort(score).SetLimit(int64(limit))
	return freshen(findAll[models.Product](ctx, r.coll, filter, opts))
}

// Featured returns the most ordered featured products
func (r *MongoProductRepository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	filter := bson.M{"isFeatured": true, "isAvailable": true, "isActive": true}
	opts := options.Find().SetSort(bson.D{{Key: "orderCount", Value: -1}}).SetLimit(int64(limit))
	return freshen(findAll[models.Product](ctx, r.coll, filter, opts))
}

// Update saves p if nobody else changed it since it was read
func (r *MongoProductRepository) Update(ctx context.Context, p *models.Product) error {
	expected := p.Version
	p.Version, p.UpdatedAt = expected+1, now()
	p.RefreshNewFlag(p.UpdatedAt)
	if err := replaceVersioned(ctx, r.coll, p.ID, expected, p); err != nil {
		p.Version = expected
		return err
	}
	return nil
}

// IncrementViews bumps the view counter in place
func (r *MongoProductRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1, "version": 1}})
	if err != nil {
		return mapErr(err, "increment product views")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id})
}

// Categories lists every category in use with its number of available products
func (r *MongoProductRepository) Categories(ctx context.Context) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": bson.M{"$cond": bson.A{"$isAvailable", 1, 0}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(err, "aggregate categories")
	}
	defer cursor.Close(ctx)

	categories := make([]CategoryCount, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, mapErr(err, "decode categories")
	}
	return categories, nil
}

// Stats summarises the whole catalog in one aggregation
func (r *MongoProductRepository) Stats(ctx context.Context) (*ProductStats, error) {
	countIf := func(cond any) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                nil,
			"totalProducts":      bson.M{"$sum": 1},
			"availableProducts":  countIf("$isAvailable"),
			"outOfStockProducts": countIf(bson.M{"$lte": bson.A{"$stock", 0}}),
			"featuredProducts":   countIf("$isFeatured"),
			"categories":         bson.M{"$addToSet": "$category"},
			"averagePrice":       bson.M{"$avg": "$price"},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(err, "aggregate product stats")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalProducts      int64    `bson:"totalProducts"`
		AvailableProducts  int64    `bson:"availableProducts"`
		OutOfStockProducts int64    `bson:"outOfStockProducts"`
		FeaturedProducts   int64    `bson:"featuredProducts"`
		Categories         []string `bson:"categories"`
		AveragePrice       float64  `bson:"averagePrice"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, mapErr(err, "decode product stats")
	}
	stats := &ProductStats{}
	if len(rows) > 0 {
		row := rows[0]
		stats.TotalProducts = row.TotalProducts
		stats.AvailableProducts = row.AvailableProducts
		stats.OutOfStockProducts = row.OutOfStockProducts
		stats.FeaturedProducts = row.FeaturedProducts
		stats.TotalCategories = len(row.Categories)
		stats.AveragePrice = row.AveragePrice
	}
	return stats, nil
}
