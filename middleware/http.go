package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/utils"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// CORS allows the configured origins; "*" allows any
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         86400,
	})
}

// Timeout bounds every request context with d. A non-positive d leaves the
// context untouched.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitByIP caps requests per client IP per minute. A non-positive limit
// disables it.
func RateLimitByIP(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.Response{
				Success: false,
				Error:   "Too many requests, please try again later",
			})
		}),
	)
}
