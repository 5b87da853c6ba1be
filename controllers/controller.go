package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/middleware"
	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultTimeout bounds the store work of a request the router did not
// already put a deadline on
const defaultTimeout = 10 * time.Second

// Mailer sends the transactional emails. Failures never fail the request.
type Mailer interface {
	SendWelcomeEmail(user models.User) error
	SendOrderConfirmationEmail(toEmail string, order models.Order) error
	SendOrderStatusEmail(toEmail, name string, order models.Order) error
}

// TokenManager issues and verifies bearer tokens
type TokenManager interface {
	GenerateJWT(userID, email, role string) (string, error)
	ParseJWT(token string) (*utils.Claims, error)
}

// requestContext keeps the deadline set by middleware.Timeout, falling back
// to defaultTimeout
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if _, ok := r.Context().Deadline(); ok {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), defaultTimeout)
}

// fail writes the error envelope, logging anything that is not the client's fault
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if utils.StatusCode(err) == http.StatusInternalServerError {
		middleware.Logger(r).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	utils.WriteError(w, err)
}

// decodeJSON decodes the request body into v and validates it
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return utils.Validation("Invalid request body")
	}
	return utils.ValidateStruct(v)
}

// pathID parses the ObjectID path variable name
func pathID(r *http.Request, name, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, utils.Validation("Invalid " + label + " ID")
	}
	return id, nil
}

// currentUser returns the authenticated caller
func currentUser(r *http.Request) (*models.User, error) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		return nil, utils.Unauthorized("Access denied. No token provided.")
	}
	return user, nil
}

// selfOrAdmin allows the account owner and admins
func selfOrAdmin(user *models.User, id primitive.ObjectID) error {
	if user.ID != id && user.Role != models.RoleAdmin {
		return utils.Forbidden("Access denied")
	}
	return nil
}

// storeErr translates repository errors into client errors
func storeErr(err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound(notFound)
	case errors.Is(err, repository.ErrVersionConflict):
		return utils.Conflict("Concurrent update, please retry")
	default:
		return err
	}
}

// retry re-runs a read-modify-write closure on version conflicts
func retry(ctx context.Context, fn func(ctx context.Context) error) error {
	return repository.RetryOnConflict(ctx, repository.DefaultRetryAttempts, fn)
}

func writePage(w http.ResponseWriter, data any, count int, page repository.Page, total int64) {
	utils.WriteSuccess(w, http.StatusOK, utils.Response{
		Data:       data,
		Count:      &count,
		Pagination: repository.NewPagination(page, total),
	})
}
