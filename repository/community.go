package repository

import (
	"context"

	"github.com/fehmi19/cheebo/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPetRepository stores adoption listings in the pets collection
type MongoPetRepository struct {
	coll *mongo.Collection
}

func NewPetRepository(db *mongo.Database) *MongoPetRepository {
	return &MongoPetRepository{coll: db.Collection(PetsCollection)}
}

func (r *MongoPetRepository) Create(ctx context.Context, p *models.Pet) error {
	ts := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = ts, ts
	p.Version = 1
	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(err, "insert pet")
}

func (r *MongoPetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	return findByID[models.Pet](ctx, r.coll, id)
}

func (r *MongoPetRepository) List(ctx context.Context, q PetQuery, page Page) ([]models.Pet, int64, error) {
	return findPage[models.Pet](ctx, r.coll, q.Filter(), bson.D{{Key: "dateCreation", Value: -1}}, page)
}

func (r *MongoPetRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Pet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreation", Value: -1}})
	return findAll[models.Pet](ctx, r.coll, bson.M{"proprietaire": owner}, opts)
}

func (r *MongoPetRepository) Update(ctx context.Context, p *models.Pet) error {
	expected, updated := p.Version, p.UpdatedAt
	p.Version, p.UpdatedAt = expected+1, now()
	if err := replaceVersioned(ctx, r.coll, p.ID, expected, p); err != nil {
		p.Version, p.UpdatedAt = expected, updated
		return err
	}
	return nil
}

func (r *MongoPetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id})
}

// MongoVetRepository stores the veterinarian directory in the vets collection
type MongoVetRepository struct {
	coll *mongo.Collection
}

func NewVetRepository(db *mongo.Database) *MongoVetRepository {
	return &MongoVetRepository{coll: db.Collection(VetsCollection)}
}

// Create inserts v; a taken email or licence number yields ErrDuplicateKey
func (r *MongoVetRepository) Create(ctx context.Context, v *models.Vet) error {
	ts := now()
	v.ID = primitive.NewObjectID()
	v.CreatedAt, v.UpdatedAt = ts, ts
	v.Version = 1
	_, err := r.coll.InsertOne(ctx, v)
	return mapErr(err, "insert vet")
}

func (r *MongoVetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vet, error) {
	return findByID[models.Vet](ctx, r.coll, id)
}

// List returns the best rated veterinarians first
func (r *MongoVetRepository) List(ctx context.Context, q VetQuery, page Page) ([]models.Vet, int64, error) {
	sort := bson.D{{Key: "note", Value: -1}, {Key: "nombreAvis", Value: -1}}
	return findPage[models.Vet](ctx, r.coll, q.Filter(), sort, page)
}

func (r *MongoVetRepository) Update(ctx context.Context, v *models.Vet) error {
	expected, updated := v.Version, v.UpdatedAt
	v.Version, v.UpdatedAt = expected+1, now()
	if err := replaceVersioned(ctx, r.coll, v.ID, expected, v); err != nil {
		v.Version, v.UpdatedAt = expected, updated
		return err
	}
	return nil
}

// MongoPostRepository stores the social feed in the posts collection
type MongoPostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{coll: db.Collection(PostsCollection)}
}

func (r *MongoPostRepository) Create(ctx context.Context, p *models.Post) error {
	ts := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = ts, ts
	p.Version = 1
	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(err, "insert post")
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return findByID[models.Post](ctx, r.coll, id)
}

func (r *MongoPostRepository) List(ctx context.Context, q PostQuery, page Page) ([]models.Post, int64, error) {
	return findPage[models.Post](ctx, r.coll, q.Filter(), bson.D{{Key: "dateCreation", Value: -1}}, page)
}

// Update saves p if nobody else liked or commented since it was read
func (r *MongoPostRepository) Update(ctx context.Context, p *models.Post) error {
	expected := p.Version
	p.Version = expected + 1
	p.Touch(now())
	if err := replaceVersioned(ctx, r.coll, p.ID, expected, p); err != nil {
		p.Version = expected
		return err
	}
	return nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id})
}

// MongoTaskRepository stores personal tasks in the tasks collection. Every
// lookup is scoped to the owner.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(TasksCollection)}
}

func (r *MongoTaskRepository) Create(ctx context.Context, t *models.Task) error {
	ts := now()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = ts, ts
	t.Version = 1
	_, err := r.coll.InsertOne(ctx, t)
	return mapErr(err, "insert task")
}

func (r *MongoTaskRepository) FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "utilisateur": owner}).Decode(&t); err != nil {
		return nil, mapErr(err, "find task")
	}
	return &t, nil
}

// List returns the most recently modified tasks first
func (r *MongoTaskRepository) List(ctx context.Context, q TaskQuery, page Page) ([]models.Task, int64, error) {
	return findPage[models.Task](ctx, r.coll, q.Filter(), bson.D{{Key: "dateModification", Value: -1}}, page)
}

// Update saves the caller's task if it was not modified since it was read
func (r *MongoTaskRepository) Update(ctx context.Context, t *models.Task) error {
	expected, updated := t.Version, t.UpdatedAt
	t.Version = expected + 1
	t.Touch(now())
	if err := replaceScoped(ctx, r.coll, bson.M{"utilisateur": t.Owner}, t.ID, expected, t); err != nil {
		t.Version, t.UpdatedAt = expected, updated
		return err
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, bson.M{"_id": id, "utilisateur": owner})
}
