package seed

import (
	"testing"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func demoUsers() (*models.User, *models.User, *models.User) {
	mk := func(name, email string) *models.User {
		u := models.NewUser(name, email, "hash")
		u.ID = primitive.NewObjectID()
		return &u
	}
	return mk("Jean Dupont", "jean@example.com"), mk("Marie Martin", "marie@example.com"), mk("Thomas Bernard", "thomas@example.com")
}

func TestDemoDataIsValid(t *testing.T) {
	jean, marie, thomas := demoUsers()

	for _, p := range Pets(jean, marie, thomas) {
		assert.NoError(t, utils.ValidateStruct(p), p.Name)
		assert.Equal(t, models.PetAvailable, p.Status)
	}
	for _, v := range Vets() {
		assert.NoError(t, utils.ValidateStruct(v), v.Name)
		assert.Equal(t, "Fermé", v.Hours.Saturday)
	}
	for _, p := range Products() {
		assert.NoError(t, utils.ValidateStruct(p), p.Name)
		assert.True(t, p.IsAvailable)
	}
}

func TestDemoPostsKeepLikesConsistent(t *testing.T) {
	jean, marie, thomas := demoUsers()

	posts := Posts(jean, marie, thomas)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.Equal(t, len(p.LikedBy), p.Likes)
		assert.Equal(t, models.PostApproved, p.Status)
	}
	assert.Equal(t, jean.ID, posts[0].Author)
	require.Len(t, posts[0].Comments, 1)
	assert.Equal(t, marie.ID, posts[0].Comments[0].User)
}

func TestDeliveredOrderTotals(t *testing.T) {
	jean, _, _ := demoUsers()
	products := Products()

	order := DeliveredOrder(jean, products[0], products[2])

	assert.Equal(t, 115.97, order.TotalAmount)
	assert.Equal(t, 99.98, order.Items[0].Subtotal)
	assert.Equal(t, models.OrderDelivered, order.Status)
	assert.True(t, order.IsTerminal())
	assert.NoError(t, utils.ValidateStruct(order.ShippingAddress))
}
