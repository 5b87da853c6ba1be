// routes/routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/controllers"
	"github.com/fehmi19/cheebo/middleware"
	"github.com/fehmi19/cheebo/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Controllers groups the handlers the router dispatches to
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Pets     *controllers.PetController
	Vets     *controllers.VetController
	Posts    *controllers.PostController
	Tasks    *controllers.TaskController
	Uploads  *controllers.UploadController
}

// Options configures the cross-cutting middleware
type Options struct {
	Logger         zerolog.Logger
	Metrics        *middleware.Metrics
	AllowedOrigins []string
	// AuthRateLimit caps register and login calls per IP per minute
	AuthRateLimit int
	// RequestTimeout bounds each request's context, zero leaves it unbounded
	RequestTimeout time.Duration
}

type guard struct {
	auth *middleware.Authenticator
}

// user requires any authenticated account
func (g guard) user(h http.HandlerFunc) http.Handler {
	return g.auth.Middleware(h)
}

// admin requires an authenticated admin
func (g guard) admin(h http.HandlerFunc) http.Handler {
	return g.auth.Middleware(middleware.AdminMiddleware(h))
}

// roles requires an authenticated account holding one of roles
func (g guard) roles(h http.HandlerFunc, roles ...models.Role) http.Handler {
	return g.auth.Middleware(middleware.RequireRole(roles...)(h))
}

// RegisterRoutes sets up all the routes for the application. Static path
// segments are registered before the {id} routes they would otherwise match.
func RegisterRoutes(router *mux.Router, c Controllers, auth *middleware.Authenticator, authRateLimit int) {
	g := guard{auth: auth}
	limited := middleware.RateLimitByIP(authRateLimit)

	router.HandleFunc("/", controllers.Index).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.Handle("/register", limited(http.HandlerFunc(c.Users.Register))).Methods(http.MethodPost)
	users.Handle("/login", limited(http.HandlerFunc(c.Users.Login))).Methods(http.MethodPost)
	users.HandleFunc("/verify-token", c.Users.VerifyToken).Methods(http.MethodPost)
	users.Handle("/profile", g.user(c.Users.GetProfile)).Methods(http.MethodGet)
	users.Handle("", g.admin(c.Users.GetUsers)).Methods(http.MethodGet)
	users.Handle("/{id}", g.user(c.Users.GetUser)).Methods(http.MethodGet)
	users.Handle("/{id}", g.user(c.Users.UpdateUser)).Methods(http.MethodPut)
	users.Handle("/{id}", g.user(c.Users.DeleteUser)).Methods(http.MethodDelete)
	users.Handle("/{id}/password", g.user(c.Users.ChangePassword)).Methods(http.MethodPut)
	users.Handle("/{id}/orders", g.user(c.Users.GetUserOrders)).Methods(http.MethodGet)
	users.Handle("/{id}/loyalty/redeem", g.user(c.Users.RedeemLoyaltyPoints)).Methods(http.MethodPost)

	// /api/auth aliases of the account routes
	aliases := api.PathPrefix("/auth").Subrouter()
	aliases.Handle("/inscription", limited(http.HandlerFunc(c.Users.Register))).Methods(http.MethodPost)
	aliases.Handle("/connexion", limited(http.HandlerFunc(c.Users.Login))).Methods(http.MethodPost)
	aliases.Handle("/profil", g.user(c.Users.GetProfile)).Methods(http.MethodGet)

	// Product routes
	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", c.Products.GetProducts).Methods(http.MethodGet)
	products.HandleFunc("/search", c.Products.SearchProducts).Methods(http.MethodGet)
	products.HandleFunc("/featured/popular", c.Products.GetFeaturedProducts).Methods(http.MethodGet)
	products.HandleFunc("/categories/list", c.Products.GetCategories).Methods(http.MethodGet)
	products.Handle("/stats/overview", g.admin(c.Products.GetProductStats)).Methods(http.MethodGet)
	products.HandleFunc("/category/{category}", c.Products.GetProductsByCategory).Methods(http.MethodGet)
	products.HandleFunc("/{id}", c.Products.GetProductByID).Methods(http.MethodGet)
	products.HandleFunc("/{id}/price", c.Products.GetProductPrice).Methods(http.MethodGet)
	products.HandleFunc("/{id}/reviews", c.Products.AddReview).Methods(http.MethodPost)
	products.Handle("", g.admin(c.Products.CreateProduct)).Methods(http.MethodPost)
	products.Handle("/{id}", g.admin(c.Products.UpdateProduct)).Methods(http.MethodPut)
	products.Handle("/{id}/availability", g.admin(c.Products.UpdateAvailability)).Methods(http.MethodPut)
	products.Handle("/{id}/stock", g.admin(c.Products.UpdateStock)).Methods(http.MethodPut)
	products.Handle("/{id}", g.admin(c.Products.DeleteProduct)).Methods(http.MethodDelete)

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Handle("", g.admin(c.Orders.GetOrders)).Methods(http.MethodGet)
	orders.Handle("", g.user(c.Orders.CreateOrder)).Methods(http.MethodPost)
	orders.Handle("/stats/overview", g.admin(c.Orders.GetOrderStats)).Methods(http.MethodGet)
	orders.Handle("/user/{userId}", g.user(c.Orders.GetUserOrders)).Methods(http.MethodGet)
	orders.Handle("/{id}", g.user(c.Orders.GetOrder)).Methods(http.MethodGet)
	orders.Handle("/{id}/status", g.roles(c.Orders.UpdateOrderStatus, models.RoleAdmin, models.RoleDelivery)).Methods(http.MethodPut)
	orders.Handle("/{id}", g.admin(c.Orders.UpdateOrder)).Methods(http.MethodPut)
	orders.Handle("/{id}", g.admin(c.Orders.DeleteOrder)).Methods(http.MethodDelete)

	// Pet routes
	pets := api.PathPrefix("/pets").Subrouter()
	pets.HandleFunc("", c.Pets.GetPets).Methods(http.MethodGet)
	pets.Handle("/mes-animaux", g.user(c.Pets.GetMyPets)).Methods(http.MethodGet)
	pets.Handle("", g.user(c.Pets.CreatePet)).Methods(http.MethodPost)
	pets.HandleFunc("/{id}", c.Pets.GetPet).Methods(http.MethodGet)
	pets.Handle("/{id}", g.user(c.Pets.UpdatePet)).Methods(http.MethodPut)
	pets.Handle("/{id}", g.user(c.Pets.DeletePet)).Methods(http.MethodDelete)

	// Vet routes
	vets := api.PathPrefix("/vets").Subrouter()
	vets.HandleFunc("", c.Vets.GetVets).Methods(http.MethodGet)
	vets.Handle("", g.admin(c.Vets.CreateVet)).Methods(http.MethodPost)
	vets.HandleFunc("/{id}", c.Vets.GetVet).Methods(http.MethodGet)
	vets.Handle("/{id}/avis", g.user(c.Vets.AddReview)).Methods(http.MethodPost)

	// Post routes
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", c.Posts.GetPosts).Methods(http.MethodGet)
	posts.Handle("", g.user(c.Posts.CreatePost)).Methods(http.MethodPost)
	posts.Handle("/{id}/like", g.user(c.Posts.ToggleLike)).Methods(http.MethodPost)
	posts.Handle("/{id}/commentaires", g.user(c.Posts.AddComment)).Methods(http.MethodPost)
	posts.Handle("/{id}", g.user(c.Posts.DeletePost)).Methods(http.MethodDelete)

	// Task routes
	tasks := api.PathPrefix("/tasks").Subrouter()
	tasks.Handle("", g.user(c.Tasks.GetTasks)).Methods(http.MethodGet)
	tasks.Handle("", g.user(c.Tasks.CreateTask)).Methods(http.MethodPost)
	tasks.Handle("/{id}", g.user(c.Tasks.GetTask)).Methods(http.MethodGet)
	tasks.Handle("/{id}", g.user(c.Tasks.UpdateTask)).Methods(http.MethodPut)
	tasks.Handle("/{id}", g.user(c.Tasks.DeleteTask)).Methods(http.MethodDelete)

	// Uploads
	api.HandleFunc("/upload", c.Uploads.UploadImage).Methods(http.MethodPost)
	router.PathPrefix("/uploads/").Handler(c.Uploads.Files()).Methods(http.MethodGet)
}

// NewRouter builds the full HTTP handler: routes, logging, metrics and CORS
func NewRouter(c Controllers, auth *middleware.Authenticator, opts Options) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.NotFound)

	// route templates are only known once mux has matched, so these run inside it
	router.Use(middleware.Timeout(opts.RequestTimeout))
	router.Use(middleware.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	RegisterRoutes(router, c, auth, opts.AuthRateLimit)

	return middleware.CORS(opts.AllowedOrigins)(router)
}
