package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
)

// VetController serves the veterinarian directory
type VetController struct {
	vets repository.VetRepository
}

func NewVetController(vets repository.VetRepository) *VetController {
	return &VetController{vets: vets}
}

// GetVets lists verified veterinarians, best rated first
func (vc *VetController) GetVets(w http.ResponseWriter, r *http.Request) {
	page := repository.ParsePage(r.URL.Query())
	q := repository.ParseVetQuery(r.URL.Query())

	ctx, cancel := requestContext(r)
	defer cancel()

	vets, total, err := vc.vets.List(ctx, q, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePage(w, vets, len(vets), page, total)
}

// GetVet returns one directory entry
func (vc *VetController) GetVet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "vétérinaire")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	vet, err := vc.vets.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "Vétérinaire non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusOK, vet, "")
}

// CreateVet registers a veterinarian. Email and licence number are unique.
func (vc *VetController) CreateVet(w http.ResponseWriter, r *http.Request) {
	var vet models.Vet
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&vet); err != nil {
		fail(w, r, utils.Validation("Corps de requête invalide"))
		return
	}
	// ratings are derived from reviews only
	vet.Reviews = nil
	vet.ApplyDefaults()
	models.RecomputeVetRating(&vet)
	if err := utils.ValidateStruct(vet); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := vc.vets.Create(ctx, &vet); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			err = utils.Conflict("Un vétérinaire avec cet email ou ce numéro de licence existe déjà")
		}
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, vet, "Vétérinaire ajouté avec succès")
}

type vetReviewRequest struct {
	Note        int    `json:"note" validate:"required,min=1,max=5"`
	Commentaire string `json:"commentaire" validate:"max=500"`
}

type vetReviewResponse struct {
	Review  models.VetReview `json:"avis"`
	Average float64          `json:"noteMoyenne"`
}

// AddReview records the caller's single review of a veterinarian
func (vc *VetController) AddReview(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "vétérinaire")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req vetReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, utils.Validation("Corps de requête invalide"))
		return
	}
	if req.Note < 1 || req.Note > 5 {
		fail(w, r, utils.Validation("La note doit être comprise entre 1 et 5"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var resp vetReviewResponse
	err = retry(ctx, func(ctx context.Context) error {
		vet, err := vc.vets.FindByID(ctx, id)
		if err != nil {
			return err
		}
		review := models.VetReview{
			User:      user.ID,
			UserName:  user.Name,
			Note:      req.Note,
			Comment:   req.Commentaire,
			CreatedAt: time.Now().UTC(),
		}
		if err := vet.AddReview(review); err != nil {
			return utils.Conflict("Vous avez déjà donné un avis")
		}
		if err := vc.vets.Update(ctx, vet); err != nil {
			return err
		}
		resp = vetReviewResponse{Review: review, Average: vet.Rating}
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Vétérinaire non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusCreated, resp, "Avis ajouté")
}
