package repository

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Product sort keys
const (
	SortNewest     = "createdAt"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortName       = "name"
	SortPopularity = "popularity"
)

// Page selects one page of a listing
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to >= 1 and limit to [1, MaxLimit], defaulting limit to DefaultLimit
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Skip is the number of documents before the page
func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// ParsePage reads page and limit from query parameters
func ParsePage(values url.Values) Page {
	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))
	return NewPage(page, limit)
}

// Pagination is the metadata returned next to a page of results
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// NewPagination computes page metadata for total matching items
func NewPagination(p Page, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	return Pagination{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNext:      p.Page < totalPages,
		HasPrev:      p.Page > 1,
	}
}

// ProductQuery filters the product listing
type ProductQuery struct {
	Category    string
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	IsAvailable *bool
	Sort        string
}

// ParseProductQuery reads the product listing filters from query parameters
func ParseProductQuery(values url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Category: strings.TrimSpace(values.Get("category")),
		Search:   strings.TrimSpace(values.Get("search")),
		Sort:     values.Get("sort"),
	}
	var err error
	if q.MinPrice, err = parseFloatParam(values, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parseFloatParam(values, "maxPrice"); err != nil {
		return q, err
	}
	if v := values.Get("isAvailable"); v != "" {
		b := v == "true"
		q.IsAvailable = &b
	}
	return q, nil
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return nil, utils.Validation(name + " must be a number")
	}
	return &f, nil
}

// Filter builds the store filter for q
func (q ProductQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.IsAvailable != nil {
		filter["isAvailable"] = *q.IsAvailable
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if q.Search != "" {
		filter["$or"] = containsAny(q.Search, "name", "description", "tags")
	}
	return filter
}

// ProductSort maps a sort key to a store ordering; unknown keys sort newest first
func ProductSort(key string) bson.D {
	switch key {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	case SortName:
		return bson.D{{Key: "name", Value: 1}}
	case SortPopularity:
		return bson.D{{Key: "orderCount", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// PetQuery filters the adoption listing
type PetQuery struct {
	Species string
	Status  string
	Search  string
}

// ParsePetQuery reads espece, statut and recherche
func ParsePetQuery(values url.Values) PetQuery {
	return PetQuery{
		Species: values.Get("espece"),
		Status:  values.Get("statut"),
		Search:  strings.TrimSpace(values.Get("recherche")),
	}
}

// Filter builds the store filter; species "tous" means any and status defaults to disponible
func (q PetQuery) Filter() bson.M {
	status := q.Status
	if status == "" {
		status = models.PetAvailable
	}
	filter := bson.M{"statut": status}
	if q.Species != "" && q.Species != "tous" {
		filter["espece"] = q.Species
	}
	if q.Search != "" {
		filter["$or"] = containsAny(q.Search, "nom", "race", "description")
	}
	return filter
}

// VetQuery filters the veterinarian directory
type VetQuery struct {
	City       string
	Speciality string
	Status     string
	Search     string
}

// ParseVetQuery reads ville, specialite, statut and recherche
func ParseVetQuery(values url.Values) VetQuery {
	return VetQuery{
		City:       values.Get("ville"),
		Speciality: values.Get("specialite"),
		Status:     values.Get("statut"),
		Search:     strings.TrimSpace(values.Get("recherche")),
	}
}

// Filter builds the store filter; "toutes" disables a filter and status defaults to verified
func (q VetQuery) Filter() bson.M {
	status := q.Status
	if status == "" {
		status = models.VetVerified
	}
	filter := bson.M{"statut": status}
	if q.City != "" && q.City != "toutes" {
		filter["ville"] = q.City
	}
	if q.Speciality != "" && q.Speciality != "toutes" {
		filter["specialites"] = bson.M{"$in": bson.A{q.Speciality}}
	}
	if q.Search != "" {
		filter["$or"] = containsAny(q.Search, "nom", "ville", "specialites")
	}
	return filter
}

// PostQuery filters the feed
type PostQuery struct {
	Status string
}

// Filter builds the store filter; status defaults to approved
func (q PostQuery) Filter() bson.M {
	if q.Status == "" {
		return bson.M{"statut": models.PostApproved}
	}
	return bson.M{"statut": q.Status}
}

// TaskQuery filters one user's tasks
type TaskQuery struct {
	Owner    primitive.ObjectID
	Status   string
	Priority string
}

// Filter builds the store filter
func (q TaskQuery) Filter() bson.M {
	filter := bson.M{"utilisateur": q.Owner}
	if q.Status != "" {
		filter["statut"] = q.Status
	}
	if q.Priority != "" {
		filter["priorite"] = q.Priority
	}
	return filter
}

// containsAny matches documents where any of fields contains text, case-insensitively
func containsAny(text string, fields ...string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	clauses := make(bson.A, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, bson.M{f: pattern})
	}
	return clauses
}
