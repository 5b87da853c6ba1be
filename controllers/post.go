package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
)

// PostController serves the community feed
type PostController struct {
	posts repository.PostRepository
}

func NewPostController(posts repository.PostRepository) *PostController {
	return &PostController{posts: posts}
}

// GetPosts pages through the feed, newest first
func (pc *PostController) GetPosts(w http.ResponseWriter, r *http.Request) {
	page := repository.ParsePage(r.URL.Query())
	q := repository.PostQuery{Status: r.URL.Query().Get("statut")}

	ctx, cancel := requestContext(r)
	defer cancel()

	posts, total, err := pc.posts.List(ctx, q, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePage(w, posts, len(posts), page, total)
}

type createPostRequest struct {
	Contenu     string `json:"contenu" validate:"required,max=2000"`
	ImageAnimal string `json:"imageAnimal"`
	TypeContenu string `json:"typeContenu" validate:"omitempty,oneof=text image video"`
	URLVideo    string `json:"urlVideo" validate:"omitempty,url"`
}

// CreatePost publishes a post authored by the caller
func (pc *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	post := models.NewPost(user, req.Contenu)
	post.PetImage = req.ImageAnimal
	post.VideoURL = req.URLVideo
	if req.TypeContenu != "" {
		post.ContentType = req.TypeContenu
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := pc.posts.Create(ctx, &post); err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, post, "Post créé avec succès")
}

type likeResponse struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// ToggleLike likes the post, or unlikes it if the caller already did
func (pc *PostController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "post")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var resp likeResponse
	err = retry(ctx, func(ctx context.Context) error {
		post, err := pc.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		liked := post.ToggleLike(user.ID)
		if err := pc.posts.Update(ctx, post); err != nil {
			return err
		}
		resp = likeResponse{Likes: post.Likes, IsLiked: liked}
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Post non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusOK, resp, "")
}

type commentRequest struct {
	Texte string `json:"texte" validate:"required,max=500"`
}

// AddComment appends the caller's comment to a post
func (pc *PostController) AddComment(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "post")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var comment models.PostComment
	err = retry(ctx, func(ctx context.Context) error {
		post, err := pc.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		comment = post.AddComment(user, req.Texte, time.Now().UTC())
		return pc.posts.Update(ctx, post)
	})
	if err != nil {
		fail(w, r, storeErr(err, "Post non trouvé"))
		return
	}
	utils.WriteData(w, http.StatusCreated, comment, "Commentaire ajouté")
}

// DeletePost removes a post; only its author or an admin may
func (pc *PostController) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "post")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	post, err := pc.posts.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "Post non trouvé"))
		return
	}
	if post.Author != user.ID && !user.HasRole(models.RoleAdmin) {
		fail(w, r, utils.Forbidden("Accès refusé"))
		return
	}
	if err := pc.posts.Delete(ctx, id); err != nil {
		fail(w, r, storeErr(err, "Post non trouvé"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "Post supprimé avec succès"})
}
