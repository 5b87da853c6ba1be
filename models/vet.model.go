package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vet statuses
const (
	VetPending   = "pending"
	VetVerified  = "verified"
	VetSuspended = "suspended"
	VetRejected  = "rejected"
)

const closed = "Fermé"

// ErrDuplicateReview is returned when a user reviews the same vet twice
var ErrDuplicateReview = errors.New("user already reviewed this veterinarian")

// OpeningHours holds one free-form schedule per weekday
type OpeningHours struct {
	Monday    string `bson:"lundi" json:"lundi"`
	Tuesday   string `bson:"mardi" json:"mardi"`
	Wednesday string `bson:"mercredi" json:"mercredi"`
	Thursday  string `bson:"jeudi" json:"jeudi"`
	Friday    string `bson:"vendredi" json:"vendredi"`
	Saturday  string `bson:"samedi" json:"samedi"`
	Sunday    string `bson:"dimanche" json:"dimanche"`
}

// VetReview is a user's rating of a veterinarian
type VetReview struct {
	User      primitive.ObjectID `bson:"utilisateur" json:"utilisateur"`
	UserName  string             `bson:"nomUtilisateur" json:"nomUtilisateur"`
	Note      int                `bson:"note" json:"note"`
	Comment   string             `bson:"commentaire,omitempty" json:"commentaire,omitempty"`
	CreatedAt time.Time          `bson:"dateCreation" json:"dateCreation"`
}

// Vet is a veterinarian directory entry
type Vet struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          string             `bson:"nom" json:"nom" validate:"required"`
	Email         string             `bson:"email" json:"email" validate:"required,email"`
	Phone         string             `bson:"telephone" json:"telephone" validate:"required"`
	Address       string             `bson:"adresse" json:"adresse" validate:"required"`
	City          string             `bson:"ville" json:"ville" validate:"required"`
	Specialities  []string           `bson:"specialites" json:"specialites" validate:"dive,oneof='Médecine Générale' Chirurgie Dermatologie Cardiologie Ophtalmologie Dentaire Urgences"`
	LicenseNumber string             `bson:"numeroLicence" json:"numeroLicence" validate:"required"`
	Experience    int                `bson:"experience,omitempty" json:"experience,omitempty" validate:"min=0"`
	Education     string             `bson:"formation,omitempty" json:"formation,omitempty"`
	Languages     []string           `bson:"langues,omitempty" json:"langues,omitempty" validate:"dive,oneof=Français Arabe Anglais Allemand Espagnol"`
	Hours         OpeningHours       `bson:"horaires" json:"horaires"`
	Rating        float64            `bson:"note" json:"note"`
	ReviewCount   int                `bson:"nombreAvis" json:"nombreAvis"`
	Reviews       []VetReview        `bson:"avis" json:"avis"`
	Image         string             `bson:"image" json:"image"`
	Status        string             `bson:"statut" json:"statut" validate:"omitempty,oneof=pending verified suspended rejected"`
	CreatedAt     time.Time          `bson:"dateInscription" json:"dateInscription"`
	UpdatedAt     time.Time          `bson:"dateModification" json:"dateModification"`
	Version       int64              `bson:"version" json:"-"`
}

// ApplyDefaults fills the fields a new directory entry starts with
func (v *Vet) ApplyDefaults() {
	v.Email = NormalizeEmail(v.Email)
	if v.Status == "" {
		v.Status = VetPending
	}
	if v.Image == "" {
		v.Image = "/vets/default.jpg"
	}
	if v.Reviews == nil {
		v.Reviews = []VetReview{}
	}
	for _, day := range []*string{&v.Hours.Monday, &v.Hours.Tuesday, &v.Hours.Wednesday, &v.Hours.Thursday,
		&v.Hours.Friday, &v.Hours.Saturday, &v.Hours.Sunday} {
		if *day == "" {
			*day = closed
		}
	}
}

// HasReviewFrom reports whether userID already reviewed this vet
func (v *Vet) HasReviewFrom(userID primitive.ObjectID) bool {
	for _, r := range v.Reviews {
		if r.User == userID {
			return true
		}
	}
	return false
}

// AddReview appends r and refreshes the rating, refusing a second review by
// the same user.
func (v *Vet) AddReview(r VetReview) error {
	if v.HasReviewFrom(r.User) {
		return ErrDuplicateReview
	}
	v.Reviews = append(v.Reviews, r)
	RecomputeVetRating(v)
	return nil
}

// RecomputeVetRating sets Rating to the mean review note and ReviewCount to
// the number of reviews.
func RecomputeVetRating(v *Vet) {
	if len(v.Reviews) == 0 {
		v.Rating = 0
		v.ReviewCount = 0
		return
	}
	sum := 0
	for _, r := range v.Reviews {
		sum += r.Note
	}
	v.Rating = float64(sum) / float64(len(v.Reviews))
	v.ReviewCount = len(v.Reviews)
}
