package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pet statuses
const (
	PetAvailable = "disponible"
	PetAdopted   = "adopte"
	PetLost      = "perdu"
	PetFound     = "trouve"
)

// ContactDetails is how to reach a pet's owner
type ContactDetails struct {
	Phone   string `bson:"telephone,omitempty" json:"telephone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Address string `bson:"adresse,omitempty" json:"adresse,omitempty"`
}

// Pet is an animal listed for adoption, lost or found
type Pet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"nom" json:"nom" validate:"required"`
	Owner       primitive.ObjectID `bson:"proprietaire" json:"proprietaire"`
	Species     string             `bson:"espece" json:"espece" validate:"required,oneof=chien chat oiseau lapin autre"`
	Breed       string             `bson:"race,omitempty" json:"race,omitempty"`
	Age         *float64           `bson:"age,omitempty" json:"age,omitempty" validate:"omitempty,min=0"`
	BirthDate   *time.Time         `bson:"dateNaissance,omitempty" json:"dateNaissance,omitempty"`
	Gender      string             `bson:"genre" json:"genre" validate:"required,oneof=male femelle"`
	Color       string             `bson:"couleur,omitempty" json:"couleur,omitempty"`
	Weight      *float64           `bson:"poids,omitempty" json:"poids,omitempty" validate:"omitempty,min=0"`
	Size        string             `bson:"taille,omitempty" json:"taille,omitempty" validate:"omitempty,oneof=petit moyen grand"`
	Sterilized  bool               `bson:"sterilise" json:"sterilise"`
	Vaccinated  bool               `bson:"vaccine" json:"vaccine"`
	Chipped     bool               `bson:"puces" json:"puces"`
	Identifier  string             `bson:"identifiant,omitempty" json:"identifiant,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image" json:"image"`
	Status      string             `bson:"statut" json:"statut" validate:"required,oneof=disponible adopte perdu trouve"`
	Contact     *ContactDetails    `bson:"coordonneesContact,omitempty" json:"coordonneesContact,omitempty"`
	CreatedAt   time.Time          `bson:"dateCreation" json:"dateCreation"`
	UpdatedAt   time.Time          `bson:"dateModification" json:"dateModification"`
	Version     int64              `bson:"version" json:"-"`
}

// ApplyDefaults fills the fields a new listing starts with
func (p *Pet) ApplyDefaults() {
	if p.Status == "" {
		p.Status = PetAvailable
	}
}
