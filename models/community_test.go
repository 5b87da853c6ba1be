package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserLoyalty(t *testing.T) {
	u := NewUser("  Jean Dupont ", " Jean@Example.COM", "hash")
	assert.Equal(t, "Jean Dupont", u.Name)
	assert.Equal(t, "jean@example.com", u.Email)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.Zero(t, u.LoyaltyPoints)

	u.UpdateOrderStats(150)
	assert.Equal(t, 150.0, u.TotalSpent)
	assert.Equal(t, 150, u.LoyaltyPoints)
	assert.Equal(t, 1, u.TotalOrders)
	assert.Equal(t, "Bronze", u.CustomerLevel())

	u.UpdateOrderStats(0.99)
	assert.Equal(t, 150, u.LoyaltyPoints, "points are floored")

	require.NoError(t, u.RedeemLoyaltyPoints(50))
	assert.Equal(t, 100, u.LoyaltyPoints)

	assert.ErrorIs(t, u.RedeemLoyaltyPoints(101), ErrInsufficientPoints)
	assert.Equal(t, 100, u.LoyaltyPoints)
	assert.ErrorIs(t, u.RedeemLoyaltyPoints(0), ErrInsufficientPoints)
}

func TestUserCustomerLevel(t *testing.T) {
	cases := map[int]string{0: "Regular", 99: "Regular", 100: "Bronze", 500: "Silver", 999: "Silver", 1000: "Gold"}
	for points, want := range cases {
		u := User{LoyaltyPoints: points}
		assert.Equal(t, want, u.CustomerLevel(), points)
	}
}

func TestUserFullAddress(t *testing.T) {
	u := User{Address: Address{City: "Tunis"}}
	assert.Empty(t, u.FullAddress())

	u.Address = Address{Street: "1 Rue de la Paix", City: "Tunis", ZipCode: " ", Country: "Tunisia"}
	assert.Equal(t, "1 Rue de la Paix, Tunis, Tunisia", u.FullAddress())
}

func TestVetAddReview(t *testing.T) {
	v := Vet{Name: "Dr. Mouna"}
	v.ApplyDefaults()
	assert.Equal(t, VetPending, v.Status)
	assert.Equal(t, "Fermé", v.Hours.Sunday)

	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, v.AddReview(VetReview{User: alice, UserName: "Alice", Note: 5}))
	require.NoError(t, v.AddReview(VetReview{User: bob, UserName: "Bob", Note: 2}))
	assert.InDelta(t, 3.5, v.Rating, 1e-9)
	assert.Equal(t, 2, v.ReviewCount)

	err := v.AddReview(VetReview{User: alice, UserName: "Alice", Note: 1})
	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Len(t, v.Reviews, 2)
	assert.InDelta(t, 3.5, v.Rating, 1e-9)

	RecomputeVetRating(&v)
	assert.InDelta(t, 3.5, v.Rating, 1e-9)

	v.Reviews = nil
	RecomputeVetRating(&v)
	assert.Zero(t, v.Rating)
	assert.Zero(t, v.ReviewCount)
}

func TestPostToggleLike(t *testing.T) {
	author := &User{ID: primitive.NewObjectID(), Name: "Marie"}
	p := NewPost(author, "Luna chez le vétérinaire")
	assert.Equal(t, "/users/default.jpg", p.AuthorImage)
	assert.Equal(t, PostApproved, p.Status)

	u1, u2 := primitive.NewObjectID(), primitive.NewObjectID()

	assert.True(t, p.ToggleLike(u1))
	assert.True(t, p.ToggleLike(u2))
	assert.Equal(t, 2, p.Likes)

	assert.False(t, p.ToggleLike(u1))
	assert.Equal(t, 1, p.Likes)
	assert.Equal(t, []primitive.ObjectID{u2}, p.LikedBy)

	assert.True(t, p.ToggleLike(u1))
	assert.Equal(t, len(p.LikedBy), p.Likes)
}

func TestPostAddComment(t *testing.T) {
	now := time.Now()
	author := &User{ID: primitive.NewObjectID(), Name: "Jean", Avatar: "/users/user_1.jpg"}
	p := NewPost(author, "Rex au parc")

	c := p.AddComment(author, "Bravo", now)
	assert.Equal(t, "Jean", c.UserName)
	assert.Equal(t, "/users/user_1.jpg", c.UserImage)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, now, p.Comments[0].CreatedAt)
}

func TestTaskDefaults(t *testing.T) {
	task := Task{Title: "Vaccin Rex"}
	task.ApplyDefaults()
	assert.Equal(t, TaskPending, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)

	now := time.Now()
	task.Touch(now)
	assert.Equal(t, now, task.UpdatedAt)
}
