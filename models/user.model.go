package models

import (
	"errors"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the access level of a user account
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleDelivery Role = "delivery"
)

// ErrInsufficientPoints is returned when a redemption exceeds the loyalty balance
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// Address represents a user's address for delivery
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// NotificationPreferences selects the channels a user accepts
type NotificationPreferences struct {
	Email bool `bson:"email" json:"email"`
	SMS   bool `bson:"sms" json:"sms"`
	Push  bool `bson:"push" json:"push"`
}

// Preferences holds per-user display settings
type Preferences struct {
	Notifications NotificationPreferences `bson:"notifications" json:"notifications"`
	Language      string                  `bson:"language" json:"language" validate:"omitempty,oneof=en fr ar"`
	Currency      string                  `bson:"currency" json:"currency" validate:"omitempty,oneof=TND EUR USD"`
}

// User represents a user in the system
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password,omitempty" json:"-"`
	Phone           string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar          string             `bson:"avatar" json:"avatar"`
	Role            Role               `bson:"role" json:"role"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	IsEmailVerified bool               `bson:"isEmailVerified" json:"isEmailVerified"`
	Address         Address            `bson:"address" json:"address"`
	Preferences     Preferences        `bson:"preferences" json:"preferences"`
	LoyaltyPoints   int                `bson:"loyaltyPoints" json:"loyaltyPoints"`
	TotalOrders     int                `bson:"totalOrders" json:"totalOrders"`
	TotalSpent      float64            `bson:"totalSpent" json:"totalSpent"`
	LastLogin       *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version         int64              `bson:"version" json:"-"`
}

// NewUser builds a customer account with the defaults applied on registration.
// hashedPassword must already be hashed.
func NewUser(name, email, hashedPassword string) User {
	u := User{
		Name:     strings.TrimSpace(name),
		Email:    NormalizeEmail(email),
		Password: hashedPassword,
		Role:     RoleCustomer,
		IsActive: true,
		Address:  Address{Country: "Tunisia"},
		Preferences: Preferences{
			Notifications: NotificationPreferences{Email: true, Push: true},
			Language:      "fr",
			Currency:      "TND",
		},
	}
	AdjustLoyalty(&u)
	return u
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdjustLoyalty re-derives the loyalty balance from cumulative spend.
// It must run after every change to TotalSpent, including creation.
func AdjustLoyalty(u *User) {
	u.LoyaltyPoints = int(math.Floor(u.TotalSpent))
}

// UpdateOrderStats records a completed order of the given amount
func (u *User) UpdateOrderStats(amount float64) {
	u.TotalOrders++
	u.TotalSpent += amount
	AdjustLoyalty(u)
}

// RedeemLoyaltyPoints spends points from the balance. Nothing changes when the
// balance is too low.
func (u *User) RedeemLoyaltyPoints(points int) error {
	if points <= 0 || u.LoyaltyPoints < points {
		return ErrInsufficientPoints
	}
	u.LoyaltyPoints -= points
	return nil
}

// CustomerLevel buckets the user by loyalty balance
func (u *User) CustomerLevel() string {
	switch {
	case u.LoyaltyPoints >= 1000:
		return "Gold"
	case u.LoyaltyPoints >= 500:
		return "Silver"
	case u.LoyaltyPoints >= 100:
		return "Bronze"
	default:
		return "Regular"
	}
}

// FullAddress joins the non-empty address parts
func (u *User) FullAddress() string {
	if u.Address.Street == "" {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, p := range []string{u.Address.Street, u.Address.City, u.Address.State, u.Address.ZipCode, u.Address.Country} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// HasRole reports whether the user holds one of roles
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// PublicProfile is the user view returned by auth endpoints
type PublicProfile struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone,omitempty"`
	Role          Role               `json:"role"`
	Avatar        string             `json:"avatar"`
	LoyaltyPoints int                `json:"loyaltyPoints"`
	CustomerLevel string             `json:"customerLevel"`
}

// Profile returns the public view of the user
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Avatar:        u.Avatar,
		LoyaltyPoints: u.LoyaltyPoints,
		CustomerLevel: u.CustomerLevel(),
	}
}
