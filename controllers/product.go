package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
	"github.com/gorilla/mux"
)

const (
	featuredLimit      = 8
	defaultSearchLimit = 20
	maxBodyBytes       = 1 << 20
)

// ProductController handles product-related requests
type ProductController struct {
	products repository.ProductRepository
}

// NewProductController creates a new ProductController
func NewProductController(products repository.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// GetProducts lists products with filtering, sorting and pagination
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query, err := repository.ParseProductQuery(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}
	page := repository.ParsePage(r.URL.Query())

	ctx, cancel := requestContext(r)
	defer cancel()

	products, total, err := pc.products.List(ctx, query, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePage(w, products, len(products), page, total)
}

// SearchProducts runs a full-text search over the available catalog
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		fail(w, r, utils.Validation("Search query is required"))
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultSearchLimit
	}
	limit = min(limit, repository.MaxLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	products, err := pc.products.Search(ctx, text, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteList(w, products, len(products))
}

// GetFeaturedProducts returns the most ordered featured products
func (pc *ProductController) GetFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	products, err := pc.products.Featured(ctx, featuredLimit)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, products, "")
}

// GetCategories lists categories with their available product counts
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	categories, err := pc.products.Categories(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, categories, "")
}

// GetProductStats summarises the catalog
func (pc *ProductController) GetProductStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	stats, err := pc.products.Stats(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, stats, "")
}

// GetProductsByCategory lists available products of one category, most ordered first
func (pc *ProductController) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	available := true
	query := repository.ProductQuery{
		Category:    mux.Vars(r)["category"],
		IsAvailable: &available,
		Sort:        repository.SortPopularity,
	}
	page := repository.ParsePage(r.URL.Query())

	ctx, cancel := requestContext(r)
	defer cancel()

	products, total, err := pc.products.List(ctx, query, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePage(w, products, len(products), page, total)
}

// GetProductByID returns one product and counts the view
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := pc.products.IncrementViews(ctx, id); err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	product, err := pc.products.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, product, "")
}

type productPrice struct {
	ProductID          string  `json:"productId"`
	Size               string  `json:"size,omitempty"`
	BasePrice          float64 `json:"basePrice"`
	FinalPrice         float64 `json:"finalPrice"`
	HasDiscount        bool    `json:"hasDiscount"`
	DiscountPercentage float64 `json:"discountPercentage"`
	InStock            bool    `json:"inStock"`
}

// GetProductPrice returns the price to pay for the optional size index
func (pc *ProductController) GetProductPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}
	var size *int
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(w, r, utils.Validation("size must be an integer"))
			return
		}
		size = &n
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	product, err := pc.products.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	now := time.Now()
	utils.WriteData(w, http.StatusOK, productPrice{
		ProductID:          product.ID.Hex(),
		Size:               product.SizeName(size),
		BasePrice:          product.Price,
		FinalPrice:         product.FinalPrice(size, now),
		HasDiscount:        product.HasDiscount(now),
		DiscountPercentage: product.DiscountPercentage,
		InStock:            product.InStock(),
	}, "")
}

// CreateProduct adds a product to the catalog
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product := models.NewProduct()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&product); err != nil {
		fail(w, r, utils.Validation("Invalid request body"))
		return
	}
	resetServerFields(&product, nil)
	product.SetStock(product.Stock)
	if err := utils.ValidateStruct(&product); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := pc.products.Create(ctx, &product); err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, product, "Product created successfully")
}

// resetServerFields restores the fields clients may not write. A nil
// original means a new product.
func resetServerFields(p *models.Product, original *models.Product) {
	if original == nil {
		original = &models.Product{Reviews: []models.ProductReview{}}
	}
	p.ID = original.ID
	p.Version = original.Version
	p.CreatedAt = original.CreatedAt
	p.Reviews = original.Reviews
	p.AverageRating = original.AverageRating
	p.TotalReviews = original.TotalReviews
	p.OrderCount = original.OrderCount
	p.ViewCount = original.ViewCount
}

// UpdateProduct merges the request body into the stored product
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || !json.Valid(body) {
		fail(w, r, utils.Validation("Invalid request body"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Product
	err = retry(ctx, func(ctx context.Context) error {
		product, err := pc.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		original := *product
		original.Reviews = slices.Clone(product.Reviews)
		if err := json.Unmarshal(body, product); err != nil {
			return utils.Validation("Invalid request body")
		}
		resetServerFields(product, &original)
		if product.Stock != original.Stock {
			product.SetStock(product.Stock)
		}
		if err := utils.ValidateStruct(product); err != nil {
			return err
		}
		if err := pc.products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, updated, "Product updated successfully")
}

type availabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

// UpdateAvailability enables or disables a product
func (pc *ProductController) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Product
	err = retry(ctx, func(ctx context.Context) error {
		product, err := pc.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		product.IsAvailable = *req.IsAvailable
		if err := pc.products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	state := "disabled"
	if *req.IsAvailable {
		state = "enabled"
	}
	utils.WriteData(w, http.StatusOK, updated, fmt.Sprintf("Product %s successfully", state))
}

type stockRequest struct {
	Quantity  int    `json:"quantity" validate:"min=0"`
	Operation string `json:"operation" validate:"required,oneof=add subtract"`
}

// UpdateStock applies a stock movement
func (pc *ProductController) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Product
	err = retry(ctx, func(ctx context.Context) error {
		product, err := pc.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := product.UpdateStock(req.Quantity, req.Operation); err != nil {
			return utils.Validation("Invalid stock operation")
		}
		if err := pc.products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, updated, "Stock updated successfully")
}

// DeleteProduct removes a product; orders keep their snapshots
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := pc.products.Delete(ctx, id); err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "Product deleted successfully"})
}

type reviewRequest struct {
	Rating   int    `json:"rating"`
	Comment  string `json:"comment" validate:"max=500"`
	UserName string `json:"userName"`
}

// AddReview records a rating and refreshes the product's average
func (pc *ProductController) AddReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		fail(w, r, utils.Validation("Rating must be between 1 and 5"))
		return
	}
	review := models.ProductReview{
		UserName:  strings.TrimSpace(req.UserName),
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if review.UserName == "" {
		review.UserName = "Anonymous"
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Product
	err = retry(ctx, func(ctx context.Context) error {
		product, err := pc.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		product.AddReview(review)
		if err := pc.products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Product not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, updated, "Review added successfully")
}
