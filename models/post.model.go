package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post moderation statuses
const (
	PostPending  = "pending"
	PostApproved = "approved"
	PostRejected = "rejected"
)

const defaultUserImage = "/users/default.jpg"

// PostComment is a reply under a post
type PostComment struct {
	User      primitive.ObjectID `bson:"utilisateur" json:"utilisateur"`
	UserName  string             `bson:"nomUtilisateur" json:"nomUtilisateur"`
	UserImage string             `bson:"imageUtilisateur" json:"imageUtilisateur"`
	Text      string             `bson:"texte" json:"texte"`
	CreatedAt time.Time          `bson:"dateCreation" json:"dateCreation"`
}

// Post is a social feed entry
type Post struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Content     string               `bson:"contenu" json:"contenu"`
	Author      primitive.ObjectID   `bson:"auteur" json:"auteur"`
	AuthorName  string               `bson:"nomAuteur" json:"nomAuteur"`
	AuthorImage string               `bson:"imageAuteur" json:"imageAuteur"`
	PetImage    string               `bson:"imageAnimal" json:"imageAnimal"`
	ContentType string               `bson:"typeContenu" json:"typeContenu"`
	VideoURL    string               `bson:"urlVideo" json:"urlVideo"`
	Likes       int                  `bson:"likes" json:"likes"`
	LikedBy     []primitive.ObjectID `bson:"utilisateursAiment" json:"utilisateursAiment"`
	Comments    []PostComment        `bson:"commentaires" json:"commentaires"`
	Status      string               `bson:"statut" json:"statut"`
	CreatedAt   time.Time            `bson:"dateCreation" json:"dateCreation"`
	UpdatedAt   time.Time            `bson:"dateModification" json:"dateModification"`
	Version     int64                `bson:"version" json:"-"`
}

// NewPost builds an approved post authored by author
func NewPost(author *User, content string) Post {
	image := author.Avatar
	if image == "" {
		image = defaultUserImage
	}
	return Post{
		Content:     content,
		Author:      author.ID,
		AuthorName:  author.Name,
		AuthorImage: image,
		ContentType: "text",
		LikedBy:     []primitive.ObjectID{},
		Comments:    []PostComment{},
		Status:      PostApproved,
	}
}

// ToggleLike flips userID's membership in LikedBy and returns whether the
// post is now liked by userID. Likes always equals len(LikedBy).
func (p *Post) ToggleLike(userID primitive.ObjectID) bool {
	for i, id := range p.LikedBy {
		if id == userID {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			p.Likes = len(p.LikedBy)
			return false
		}
	}
	p.LikedBy = append(p.LikedBy, userID)
	p.Likes = len(p.LikedBy)
	return true
}

// AddComment appends a comment written by author
func (p *Post) AddComment(author *User, text string, now time.Time) PostComment {
	image := author.Avatar
	if image == "" {
		image = defaultUserImage
	}
	c := PostComment{User: author.ID, UserName: author.Name, UserImage: image, Text: text, CreatedAt: now}
	p.Comments = append(p.Comments, c)
	return c
}

// Touch stamps the modification time; call on every save
func (p *Post) Touch(now time.Time) {
	p.UpdatedAt = now
}
