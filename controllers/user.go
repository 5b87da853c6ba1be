package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/middleware"
	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserController handles user-related requests
type UserController struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	tokens TokenManager
	mailer Mailer
}

// NewUserController creates a new UserController
func NewUserController(users repository.UserRepository, orders repository.OrderRepository, tokens TokenManager, mailer Mailer) *UserController {
	return &UserController{users: users, orders: orders, tokens: tokens, mailer: mailer}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	// Check if user already exists
	_, err := uc.users.FindByEmail(ctx, req.Email)
	if err == nil {
		fail(w, r, utils.Conflict("User already exists with this email"))
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		fail(w, r, err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	user := models.NewUser(req.Name, req.Email, hashedPassword)
	user.Phone = req.Phone

	if err := uc.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			err = utils.Conflict("User already exists with this email")
		}
		fail(w, r, err)
		return
	}

	token, err := uc.tokens.GenerateJWT(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := uc.mailer.SendWelcomeEmail(user); err != nil {
		middleware.Logger(r).Warn().Err(err).Str("user", user.ID.Hex()).Msg("welcome email not sent")
	}

	utils.WriteSuccess(w, http.StatusCreated, utils.Response{
		Data:    user.Profile(),
		Token:   token,
		Message: "User registered successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, utils.Validation("Email and password are required"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := uc.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		fail(w, r, utils.Validation("Invalid credentials"))
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		fail(w, r, utils.Validation("Invalid credentials"))
		return
	}
	if !user.IsActive {
		fail(w, r, utils.Unauthorized("Account is deactivated"))
		return
	}

	// Update last login
	err = retry(ctx, func(ctx context.Context) error {
		fresh, err := uc.users.FindByID(ctx, user.ID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		fresh.LastLogin = &now
		if err := uc.users.Update(ctx, fresh); err != nil {
			return err
		}
		user = fresh
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}

	token, err := uc.tokens.GenerateJWT(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		fail(w, r, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.Response{
		Data:    user.Profile(),
		Token:   token,
		Message: "Login successful",
	})
}

// VerifyToken reports whether a token is valid and returns its user
func (uc *UserController) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, utils.Validation("Token is required"))
		return
	}

	claims, err := uc.tokens.ParseJWT(req.Token)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		fail(w, r, utils.Unauthorized("Invalid token"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, user, "Token is valid")
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, user, "")
}

// GetUsers lists every account
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	users, err := uc.users.List(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteList(w, users, len(users))
}

// target resolves the {id} account and checks the caller may act on it
func (uc *UserController) target(r *http.Request) (primitive.ObjectID, error) {
	caller, err := currentUser(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := pathID(r, "id", "user")
	if err != nil {
		return primitive.NilObjectID, err
	}
	return id, selfOrAdmin(caller, id)
}

// GetUser returns one account
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uc.target(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, user, "")
}

type updateUserRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=1,max=50"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
	Avatar  *string         `json:"avatar"`
}

// UpdateUser changes the profile fields a user may edit
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uc.target(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.User
	err = retry(ctx, func(ctx context.Context) error {
		user, err := uc.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Address != nil {
			user.Address = *req.Address
		}
		if req.Avatar != nil {
			user.Avatar = *req.Avatar
		}
		if err := uc.users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, updated, "Profile updated successfully")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword replaces the password after checking the current one
func (uc *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := uc.target(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	err = retry(ctx, func(ctx context.Context) error {
		user, err := uc.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !utils.CheckPassword(user.Password, req.CurrentPassword) {
			return utils.Validation("Current password is incorrect")
		}
		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		user.Password = hashed
		return uc.users.Update(ctx, user)
	})
	if err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "Password updated successfully"})
}

// DeleteUser removes an account; its orders, pets and posts are kept
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uc.target(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := uc.users.Delete(ctx, id); err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "User deleted successfully"})
}

// GetUserOrders lists an account's orders, newest first
func (uc *UserController) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	id, err := uc.target(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	orders, err := uc.orders.ListByUser(ctx, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteList(w, orders, len(orders))
}

type redeemRequest struct {
	Points int `json:"points" validate:"required,min=1"`
}

// RedeemLoyaltyPoints spends loyalty points from the account balance
func (uc *UserController) RedeemLoyaltyPoints(w http.ResponseWriter, r *http.Request) {
	id, err := uc.target(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var updated *models.User
	err = retry(ctx, func(ctx context.Context) error {
		user, err := uc.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := user.RedeemLoyaltyPoints(req.Points); err != nil {
			return utils.Validation("Insufficient loyalty points")
		}
		if err := uc.users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "User not found"))
		return
	}
	utils.WriteData(w, http.StatusOK, map[string]any{
		"loyaltyPoints": updated.LoyaltyPoints,
		"customerLevel": updated.CustomerLevel(),
	}, "Loyalty points redeemed successfully")
}
