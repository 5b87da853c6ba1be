package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenParser validates a bearer token and returns its claims
type TokenParser interface {
	ParseJWT(token string) (*utils.Claims, error)
}

// UserFinder loads the account a token was issued for
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Authenticator verifies bearer tokens and attaches the current user to the request
type Authenticator struct {
	tokens TokenParser
	users  UserFinder
}

func NewAuthenticator(tokens TokenParser, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Middleware rejects requests without a valid token for an existing, active user
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			utils.WriteError(w, utils.Unauthorized("Access denied. No token provided."))
			return
		}

		claims, err := a.tokens.ParseJWT(tokenStr)
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.WriteError(w, utils.Unauthorized("Invalid token"))
			return
		}
		user, err := a.users.FindByID(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !user.IsActive) {
			utils.WriteError(w, utils.Unauthorized("Invalid token"))
			return
		}
		if err != nil {
			Logger(r).Error().Err(err).Str("user", claims.UserID).Msg("load token user")
			utils.WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole lets through only users holding one of roles. It must run after
// Authenticator.Middleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				utils.WriteError(w, utils.Unauthorized("Access denied. No token provided."))
				return
			}
			if !user.HasRole(roles...) {
				utils.WriteError(w, utils.Forbidden("Access denied. Insufficient permissions."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}

// WithUser stores user in ctx
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// CurrentUser returns the authenticated user, if any
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
