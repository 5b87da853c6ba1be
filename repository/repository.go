// Package repository holds the typed document stores used by the controllers
// and the query layer that turns request parameters into store queries.
package repository

import (
	"context"

	"github.com/fehmi19/cheebo/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches an id lookup
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when a write violates a unique index
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrVersionConflict is returned when a document changed between read and write
	ErrVersionConflict = errors.New("document was modified concurrently")
)

// DefaultRetryAttempts bounds read-modify-write retries after a version conflict
const DefaultRetryAttempts = 3

// RetryOnConflict runs fn until it succeeds, fails with anything other than
// ErrVersionConflict, or attempts are exhausted. fn must re-read the document
// it mutates on every call.
func RetryOnConflict(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); !errors.Is(err, ErrVersionConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, q ProductQuery, page Page) ([]models.Product, int64, error)
	Search(ctx context.Context, text string, limit int) ([]models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Categories(ctx context.Context) ([]CategoryCount, error)
	Stats(ctx context.Context) (*ProductStats, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Stats(ctx context.Context) (*OrderStats, error)
}

type PetRepository interface {
	Create(ctx context.Context, p *models.Pet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error)
	List(ctx context.Context, q PetQuery, page Page) ([]models.Pet, int64, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Pet, error)
	Update(ctx context.Context, p *models.Pet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type VetRepository interface {
	Create(ctx context.Context, v *models.Vet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vet, error)
	List(ctx context.Context, q VetQuery, page Page) ([]models.Vet, int64, error)
	Update(ctx context.Context, v *models.Vet) error
}

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, q PostQuery, page Page) ([]models.Post, int64, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, q TaskQuery, page Page) ([]models.Task, int64, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
}

// CategoryCount is a product category with its number of available products
type CategoryCount struct {
	Name  string `bson:"_id" json:"name"`
	Count int    `bson:"count" json:"count"`
}

// ProductStats summarises the catalog
type ProductStats struct {
	TotalProducts      int64   `json:"totalProducts"`
	AvailableProducts  int64   `json:"availableProducts"`
	OutOfStockProducts int64   `json:"outOfStockProducts"`
	FeaturedProducts   int64   `json:"featuredProducts"`
	TotalCategories    int     `json:"totalCategories"`
	AveragePrice       float64 `json:"averagePrice"`
}

// OrderStats summarises orders; revenue counts delivered orders only
type OrderStats struct {
	TotalOrders     int64   `bson:"totalOrders" json:"totalOrders"`
	PendingOrders   int64   `bson:"pendingOrders" json:"pendingOrders"`
	DeliveredOrders int64   `bson:"deliveredOrders" json:"deliveredOrders"`
	CancelledOrders int64   `bson:"cancelledOrders" json:"cancelledOrders"`
	TotalRevenue    float64 `bson:"totalRevenue" json:"totalRevenue"`
}

// Store bundles every repository; it is built once at startup and handed to
// the controllers.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
	Pets     PetRepository
	Vets     VetRepository
	Posts    PostRepository
	Tasks    TaskRepository
}
