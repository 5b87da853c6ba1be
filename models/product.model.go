package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stock operations accepted by UpdateStock
const (
	StockSubtract = "subtract"
	StockAdd      = "add"
)

// ErrInvalidStockOperation is returned for an operation other than add/subtract
var ErrInvalidStockOperation = errors.New("invalid stock operation")

// ProductCategories lists the accepted catalog categories
var ProductCategories = []string{"nourriture", "jouets", "soins", "accessoires", "habitat", "sante"}

// ProductImage is one picture of a product
type ProductImage struct {
	URL       string `bson:"url" json:"url" validate:"required"`
	Alt       string `bson:"alt" json:"alt"`
	IsPrimary bool   `bson:"isPrimary" json:"isPrimary"`
}

// ProductSize is a size variant with its own price
type ProductSize struct {
	Name            string  `bson:"name" json:"name" validate:"required"`
	Price           float64 `bson:"price" json:"price" validate:"min=0"`
	AdditionalPrice float64 `bson:"additionalPrice" json:"additionalPrice"`
}

// Ingredient is a composition entry
type Ingredient struct {
	Name     string `bson:"name" json:"name" validate:"required"`
	Quantity string `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Allergen bool   `bson:"allergen" json:"allergen"`
}

// NutritionalInfo is per-serving nutrition, grams except sodium (mg)
type NutritionalInfo struct {
	Calories float64 `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat      float64 `bson:"fat,omitempty" json:"fat,omitempty"`
	Fiber    float64 `bson:"fiber,omitempty" json:"fiber,omitempty"`
	Sodium   float64 `bson:"sodium,omitempty" json:"sodium,omitempty"`
}

// ProductReview is a customer rating of a product
type ProductReview struct {
	UserName  string    `bson:"userName" json:"userName"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Product represents a catalog item
type Product struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name               string             `bson:"name" json:"name" validate:"required,max=100"`
	Description        string             `bson:"description" json:"description" validate:"required,max=2000"`
	ShortDescription   string             `bson:"shortDescription,omitempty" json:"shortDescription,omitempty" validate:"max=200"`
	Price              float64            `bson:"price" json:"price" validate:"min=0"`
	OriginalPrice      float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty" validate:"min=0"`
	Category           string             `bson:"category" json:"category" validate:"required,oneof=nourriture jouets soins accessoires habitat sante"`
	Subcategory        string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Brand              string             `bson:"brand,omitempty" json:"brand,omitempty"`
	AnimalTypes        []string           `bson:"animalTypes,omitempty" json:"animalTypes,omitempty"`
	Images             []ProductImage     `bson:"images" json:"images" validate:"dive"`
	Ingredients        []Ingredient       `bson:"ingredients,omitempty" json:"ingredients,omitempty" validate:"dive"`
	NutritionalInfo    *NutritionalInfo   `bson:"nutritionalInfo,omitempty" json:"nutritionalInfo,omitempty"`
	Allergens          []string           `bson:"allergens,omitempty" json:"allergens,omitempty"`
	Sizes              []ProductSize      `bson:"sizes,omitempty" json:"sizes,omitempty" validate:"dive"`
	Stock              int                `bson:"stock" json:"stock" validate:"min=0"`
	IsAvailable        bool               `bson:"isAvailable" json:"isAvailable"`
	IsFeatured         bool               `bson:"isFeatured" json:"isFeatured"`
	IsNewItem          bool               `bson:"isNewItem" json:"isNewItem"`
	Tags               []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Reviews            []ProductReview    `bson:"reviews" json:"reviews"`
	AverageRating      float64            `bson:"averageRating" json:"averageRating"`
	TotalReviews       int                `bson:"totalReviews" json:"totalReviews"`
	OrderCount         int                `bson:"orderCount" json:"orderCount"`
	ViewCount          int                `bson:"viewCount" json:"viewCount"`
	DiscountPercentage float64            `bson:"discountPercentage" json:"discountPercentage" validate:"min=0,max=100"`
	DiscountValidUntil *time.Time         `bson:"discountValidUntil,omitempty" json:"discountValidUntil,omitempty"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version            int64              `bson:"version" json:"-"`
}

// NewProduct returns a product with the catalog defaults set
func NewProduct() Product {
	return Product{IsAvailable: true, IsActive: true, Images: []ProductImage{}, Reviews: []ProductReview{}}
}

// UpdateStock applies a stock movement and re-derives availability.
// Subtracting never drives stock below zero.
func (p *Product) UpdateStock(quantity int, operation string) error {
	switch operation {
	case StockSubtract:
		p.Stock = max(0, p.Stock-quantity)
	case StockAdd:
		p.Stock += quantity
	default:
		return ErrInvalidStockOperation
	}
	p.IsAvailable = p.Stock > 0
	return nil
}

// SetStock replaces the stock level and re-derives availability
func (p *Product) SetStock(stock int) {
	p.Stock = stock
	p.IsAvailable = p.Stock > 0
}

// CheckAvailability reports whether quantity units can be ordered
func (p *Product) CheckAvailability(quantity int) bool {
	return p.IsAvailable && p.IsActive && p.Stock >= quantity
}

// InStock reports whether any unit is left
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// HasDiscount reports whether the discount applies at now
func (p *Product) HasDiscount(now time.Time) bool {
	return p.DiscountPercentage > 0 && (p.DiscountValidUntil == nil || p.DiscountValidUntil.After(now))
}

// FinalPrice returns the unit price for the optional size index with any
// active discount applied, rounded to 2 decimal places. An out of range index
// falls back to the base price.
func (p *Product) FinalPrice(sizeIndex *int, now time.Time) float64 {
	base := decimal.NewFromFloat(p.Price)
	if sizeIndex != nil && *sizeIndex >= 0 && *sizeIndex < len(p.Sizes) {
		base = decimal.NewFromFloat(p.Sizes[*sizeIndex].Price)
	}
	if p.HasDiscount(now) {
		factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p.DiscountPercentage).Div(decimal.NewFromInt(100)))
		base = base.Mul(factor)
	}
	return base.Round(2).InexactFloat64()
}

// SizeName returns the name of the size at index, or "" when not applicable
func (p *Product) SizeName(sizeIndex *int) string {
	if sizeIndex == nil || *sizeIndex < 0 || *sizeIndex >= len(p.Sizes) {
		return ""
	}
	return p.Sizes[*sizeIndex].Name
}

// PrimaryImage returns the primary image URL, else the first, else ""
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// AddReview appends a review and refreshes the rating aggregate
func (p *Product) AddReview(r ProductReview) {
	p.Reviews = append(p.Reviews, r)
	RecomputeProductRating(p)
}

// RecomputeProductRating sets AverageRating to the mean of all review ratings
// and TotalReviews to their count.
func RecomputeProductRating(p *Product) {
	p.TotalReviews = len(p.Reviews)
	if len(p.Reviews) == 0 {
		p.AverageRating = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.AverageRating = float64(sum) / float64(len(p.Reviews))
}

// RefreshNewFlag clears IsNewItem once the product is older than 30 days
func (p *Product) RefreshNewFlag(now time.Time) {
	if !p.CreatedAt.IsZero() && p.CreatedAt.Before(now.AddDate(0, 0, -30)) {
		p.IsNewItem = false
	}
}
