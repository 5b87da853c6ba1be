package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
)

// PetController handles the adoption and lost-and-found listings
type PetController struct {
	pets repository.PetRepository
}

func NewPetController(pets repository.PetRepository) *PetController {
	return &PetController{pets: pets}
}

// GetPets lists pets by species, status and free text
func (pc *PetController) GetPets(w http.ResponseWriter, r *http.Request) {
	page := repository.ParsePage(r.URL.Query())
	q := repository.ParsePetQuery(r.URL.Query())

	ctx, cancel := requestContext(r)
	defer cancel()

	pets, total, err := pc.pets.List(ctx, q, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePage(w, pets, len(pets), page, total)
}

// GetMyPets lists the caller's own pets
func (pc *PetController) GetMyPets(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	pets, err := pc.pets.ListByOwner(ctx, user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteList(w, pets, len(pets))
}

// CreatePet lists a pet owned by the caller, whatever the body says
func (pc *PetController) CreatePet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var pet models.Pet
	if err := json.NewDecoder(r.Body).Decode(&pet); err != nil {
		fail(w, r, utils.Validation("Corps de requête invalide"))
		return
	}
	pet.Owner = user.ID
	pet.ApplyDefaults()
	if err := utils.ValidateStruct(pet); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := pc.pets.Create(ctx, &pet); err != nil {
		fail(w, r, storeErr(err, "Animal non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusCreated, pet, "Animal ajouté avec succès")
}

// GetPet returns one listing
func (pc *PetController) GetPet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "animal")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	pet, err := pc.pets.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "Animal non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusOK, pet, "")
}

// owned loads the {id} pet if it belongs to the caller. Someone else's pet
// is reported as missing.
func (pc *PetController) owned(ctx context.Context, r *http.Request) (*models.Pet, error) {
	user, err := currentUser(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "id", "animal")
	if err != nil {
		return nil, err
	}
	pet, err := pc.pets.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Animal non trouvé ou non autorisé")
	}
	if pet.Owner != user.ID {
		return nil, utils.NotFound("Animal non trouvé ou non autorisé")
	}
	return pet, nil
}

// UpdatePet merges the body into the caller's pet. Identity, owner and
// creation date cannot change.
func (pc *PetController) UpdatePet(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		fail(w, r, utils.Validation("Corps de requête invalide"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.Pet
	err = retry(ctx, func(ctx context.Context) error {
		pet, err := pc.owned(ctx, r)
		if err != nil {
			return err
		}
		original := *pet
		if err := json.Unmarshal(body, pet); err != nil {
			return utils.Validation("Corps de requête invalide")
		}
		pet.ID, pet.Owner, pet.CreatedAt = original.ID, original.Owner, original.CreatedAt
		pet.UpdatedAt, pet.Version = original.UpdatedAt, original.Version
		if err := utils.ValidateStruct(pet); err != nil {
			return err
		}
		if err := pc.pets.Update(ctx, pet); err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Animal non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusOK, updated, "Animal mis à jour")
}

// DeletePet removes the caller's pet
func (pc *PetController) DeletePet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	pet, err := pc.owned(ctx, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := pc.pets.Delete(ctx, pet.ID); err != nil {
		fail(w, r, storeErr(err, "Animal non trouvé"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "Animal supprimé"})
}
