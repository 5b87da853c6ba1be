// Package seed loads the demo data set used for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Demo credentials printed after seeding
const (
	AdminEmail    = "admin@cheebo.com"
	AdminPassword = "admin123"
	UserPassword  = "password123"
)

// Summary counts what was created
type Summary struct {
	Users    int
	Pets     int
	Vets     int
	Products int
	Posts    int
	Orders   int
}

type account struct {
	name, email, password, avatar string
	role                          models.Role
}

var accounts = []account{
	{"Admin Cheebo", AdminEmail, AdminPassword, "/users/admin.jpg", models.RoleAdmin},
	{"Jean Dupont", "jean@example.com", UserPassword, "/users/user_1.jpg", models.RoleCustomer},
	{"Marie Martin", "marie@example.com", UserPassword, "/users/user_2.jpg", models.RoleCustomer},
	{"Thomas Bernard", "thomas@example.com", UserPassword, "/users/user_3.jpg", models.RoleCustomer},
}

// Reset empties every collection of db
func Reset(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return errors.Wrap(err, "list collections")
	}
	for _, name := range names {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrapf(err, "clear %s", name)
		}
		log.Info().Str("collection", name).Msg("collection cleared")
	}
	return nil
}

// Run wipes the database and loads the demo data through the repositories
func Run(ctx context.Context, db *mongo.Database, store *repository.Store, log zerolog.Logger) (*Summary, error) {
	if err := Reset(ctx, db, log); err != nil {
		return nil, err
	}
	var sum Summary

	users := make([]*models.User, 0, len(accounts))
	for _, a := range accounts {
		hashed, err := utils.HashPassword(a.password)
		if err != nil {
			return nil, err
		}
		u := models.NewUser(a.name, a.email, hashed)
		u.Role = a.role
		u.Avatar = a.avatar
		if err := store.Users.Create(ctx, &u); err != nil {
			return nil, errors.Wrapf(err, "create user %s", a.email)
		}
		users = append(users, &u)
		sum.Users++
	}
	jean, marie, thomas := users[1], users[2], users[3]

	for _, p := range Pets(jean, marie, thomas) {
		if err := store.Pets.Create(ctx, &p); err != nil {
			return nil, errors.Wrapf(err, "create pet %s", p.Name)
		}
		sum.Pets++
	}

	for _, v := range Vets() {
		if err := store.Vets.Create(ctx, &v); err != nil {
			return nil, errors.Wrapf(err, "create vet %s", v.Name)
		}
		sum.Vets++
	}

	products := Products()
	for i := range products {
		if err := store.Products.Create(ctx, &products[i]); err != nil {
			return nil, errors.Wrapf(err, "create product %s", products[i].Name)
		}
		sum.Products++
	}

	for _, p := range Posts(jean, marie, thomas) {
		if err := store.Posts.Create(ctx, &p); err != nil {
			return nil, errors.Wrap(err, "create post")
		}
		sum.Posts++
	}

	order := DeliveredOrder(jean, products[0], products[2])
	if err := store.Orders.Create(ctx, &order); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	sum.Orders++
	jean.UpdateOrderStats(order.TotalAmount)
	if err := store.Users.Update(ctx, jean); err != nil {
		return nil, errors.Wrap(err, "record order stats")
	}

	log.Info().
		Int("users", sum.Users).
		Int("pets", sum.Pets).
		Int("vets", sum.Vets).
		Int("products", sum.Products).
		Int("posts", sum.Posts).
		Int("orders", sum.Orders).
		Msg("demo data loaded")
	return &sum, nil
}

func float(v float64) *float64 { return &v }

// Pets returns one listing for each demo customer
func Pets(jean, marie, thomas *models.User) []models.Pet {
	pets := []models.Pet{
		{
			Name: "Rex", Owner: jean.ID, Species: "chien", Breed: "Golden Retriever", Age: float(3),
			Gender: "male", Color: "Doré", Weight: float(25), Size: "grand",
			Sterilized: true, Vaccinated: true, Identifier: "CH-2024-001",
			Description: "Chien très gentil et joueur, adore les enfants", Image: "/pets/rex.jpg",
			Contact: &models.ContactDetails{Phone: "98123456", Email: jean.Email, Address: "123 Rue de la Paix, Tunis"},
		},
		{
			Name: "Luna", Owner: marie.ID, Species: "chat", Breed: "Persan", Age: float(2),
			Gender: "femelle", Color: "Blanc", Weight: float(4), Size: "moyen",
			Sterilized: true, Vaccinated: true, Chipped: true, Identifier: "CT-2024-002",
			Description: "Chatte très calme et affectueuse", Image: "/pets/luna.jpg",
			Contact: &models.ContactDetails{Phone: "98654321", Email: marie.Email, Address: "456 Avenue Bourguiba, Ben Arous"},
		},
		{
			Name: "Milo", Owner: thomas.ID, Species: "lapin", Breed: "Nain", Age: float(1),
			Gender: "male", Color: "Gris", Weight: float(1.5), Size: "petit",
			Vaccinated: true, Identifier: "LP-2024-003",
			Description: "Lapin très actif qui adore jouer", Image: "/pets/milo.jpg",
		},
	}
	for i := range pets {
		pets[i].ApplyDefaults()
	}
	return pets
}

// Vets returns the verified demo veterinarians
func Vets() []models.Vet {
	weekdays := func(monday string) models.OpeningHours {
		return models.OpeningHours{
			Monday: monday, Tuesday: "09:00 - 17:00", Wednesday: "09:00 - 17:00", Thursday: "09:00 - 17:00",
			Friday: "09:00 - 15:00", Sunday: "09:00 - 15:00",
		}
	}
	vets := []models.Vet{
		{
			Name: "Dr. Mouna Boukadi", Email: "dr.mouna@vetclinic.com", Phone: "98356535",
			Address: "123 Avenue Habib Bourguiba, Ben Arous", City: "Ben Arous",
			Specialities:  []string{"Médecine Générale", "Chirurgie"},
			LicenseNumber: "VET-TN-2020-001", Experience: 8,
			Education: "École Nationale de Médecine Vétérinaire de Sidi Thabet",
			Languages: []string{"Français", "Arabe", "Anglais"},
			Hours:     weekdays("09:00 - 17:00"),
			Rating:    4.8, ReviewCount: 22, Status: models.VetVerified,
		},
		{
			Name: "Dr. Ahmed Ben Salem", Email: "dr.ahmed@petcare.tn", Phone: "22123456",
			Address: "45 Rue de la Liberté, Tunis", City: "Tunis",
			Specialities:  []string{"Dermatologie", "Cardiologie"},
			LicenseNumber: "VET-TN-2019-045", Experience: 12,
			Education: "Université de Tunis, École de Médecine Vétérinaire",
			Languages: []string{"Français", "Arabe"},
			Hours:     weekdays("24h"),
			Rating:    4.2, ReviewCount: 15, Status: models.VetVerified,
		},
	}
	for i := range vets {
		vets[i].ApplyDefaults()
	}
	return vets
}

// Products returns the demo catalog
func Products() []models.Product {
	item := func(name, description string, price, original float64, category, brand string, stock int, image string, animals ...string) models.Product {
		p := models.NewProduct()
		p.Name, p.Description, p.Price, p.OriginalPrice = name, description, price, original
		p.Category, p.Brand, p.Stock, p.AnimalTypes = category, brand, stock, animals
		p.Images = []models.ProductImage{{URL: image, Alt: name, IsPrimary: true}}
		p.IsFeatured = original > 0
		return p
	}
	return []models.Product{
		item("Croquettes Premium pour Chien",
			"Croquettes haut de gamme pour chiens adultes de toutes races. Enrichies en vitamines et minéraux pour une santé optimale.",
			49.99, 59.99, "nourriture", "Royal Canin", 15,
			"https://ik.imagekit.io/yynn3ntzglc/france/production/catalog/products/001005/1.jpg", "chien"),
		item("Croquettes Premium pour Chat",
			"Croquettes haut de gamme pour chats adultes. Formulées pour maintenir une peau saine et un pelage brillant.",
			39.99, 49.99, "nourriture", "Royal Canin", 20,
			"https://ik.imagekit.io/yynn3ntzglc/france/production/catalog/products/001005/2.jpg", "chat"),
		item("Jouet Corde pour Chien",
			"Jouet en corde naturelle, parfait pour le jeu et le nettoyage des dents.",
			15.99, 0, "jouets", "Kong", 30,
			"https://images.unsplash.com/photo-1583337130417-3346a1be7dee?w=400", "chien"),
		item("Litière Chat Naturelle",
			"Litière naturelle absorbante et anti-odeurs.",
			12.99, 15.99, "soins", "Catsan", 25,
			"https://images.unsplash.com/photo-1425082661705-1834bfd09dca?w=400", "chat"),
		item("Collier Ajustable pour Chien",
			"Collier confortable et ajustable pour chiens de toutes tailles.",
			19.99, 0, "accessoires", "PetSafe", 40,
			"https://images.unsplash.com/photo-1601758228041-f3b2795255f1?w=400", "chien"),
	}
}

// Posts returns the demo feed
func Posts(jean, marie, thomas *models.User) []models.Post {
	post := func(author *models.User, content, image string, likers ...*models.User) models.Post {
		p := models.NewPost(author, content)
		p.PetImage, p.ContentType = image, "image"
		for _, u := range likers {
			p.ToggleLike(u.ID)
		}
		return p
	}
	rex := post(jean, "Belle journée au parc avec Rex ! Il adore courir après les écureuils.", "/pets/pet_1.webp", marie, thomas)
	rex.AddComment(marie, "Il a l'air tellement heureux !", date(2024, time.February, 15))
	luna := post(marie, "Première visite chez le vétérinaire pour Luna aujourd'hui. Tout va bien !", "/pets/pet_2.jpeg", jean)
	luna.AddComment(jean, "C'est important de faire des contrôles réguliers !", date(2024, time.February, 16))
	milo := post(thomas, "Nouvel arrivant dans la famille ! Voici Milo, notre petit lapin de 6 mois.", "/pets/pet_3.jpg", jean, marie)
	return []models.Post{rex, luna, milo}
}

// DeliveredOrder returns a completed order of two food bags and one toy
func DeliveredOrder(customer *models.User, food, toy models.Product) models.Order {
	delivered := date(2024, time.January, 15)
	o := models.Order{
		User: customer.ID,
		Items: []models.OrderItem{
			{Product: food.ID, Name: food.Name, Price: food.Price, Quantity: 2},
			{Product: toy.ID, Name: toy.Name, Price: toy.Price, Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{
			FullName: customer.Name, Phone: "98123456", Street: "123 Rue de la Paix",
			City: "Tunis", State: "Tunis", ZipCode: "1000", Country: "Tunisia",
		},
		PaymentMethod:      models.PaymentCashOnDelivery,
		PaymentStatus:      models.PaymentPaid,
		Status:             models.OrderDelivered,
		ActualDeliveryTime: &delivered,
	}
	models.ComputeOrderTotals(&o, false)
	return o
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// String renders the summary for the CLI
func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d pets, %d vets, %d products, %d posts, %d orders",
		s.Users, s.Pets, s.Vets, s.Products, s.Posts, s.Orders)
}
