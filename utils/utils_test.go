package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("name is required"), http.StatusBadRequest},
		{Conflict("User already exists with this email"), http.StatusBadRequest},
		{Unauthorized("Invalid token"), http.StatusUnauthorized},
		{Forbidden("Forbidden"), http.StatusForbidden},
		{NotFound("Order not found"), http.StatusNotFound},
		{fmt.Errorf("load order: %w", NotFound("Order not found")), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Order not found", PublicMessage(NotFound("Order not found")))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("socket closed at 10.0.0.3")))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Validation("Invalid status"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"Invalid status"}`, rec.Body.String())
}

func TestWriteList(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteList(rec, []string{}, 0)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, 0.0, body["count"])
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateJWT("64b7f0c2a1b2c3d4e5f60718", "jean@example.com", "customer")
	require.NoError(t, err)

	claims, err := m.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	_, err = NewJWTManager("other-secret", time.Hour).ParseJWT(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.ParseJWT("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired, err := NewJWTManager("test-secret", -time.Minute).GenerateJWT("64b7f0c2a1b2c3d4e5f60718", "a@b.c", "customer")
	require.NoError(t, err)
	_, err = m.ParseJWT(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Rating   int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(signupRequest{Name: "Jean", Email: "jean@example.com", Password: "secret"}))

	cases := []struct {
		want string
		req  signupRequest
	}{
		{"name is required", signupRequest{Email: "jean@example.com", Password: "secret"}},
		{"email must be a valid email", signupRequest{Name: "Jean", Email: "jean", Password: "secret"}},
		{"password must contain at least 6 characters", signupRequest{Name: "Jean", Email: "jean@example.com", Password: "abc"}},
		{"rating must be at most 5", signupRequest{Name: "Jean", Email: "jean@example.com", Password: "secret", Rating: 9}},
	}
	for _, tc := range cases {
		err := ValidateStruct(tc.req)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, tc.want, err.Error())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("dropped")
	log.Warn().Str("order", "CHB-1").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "cheebo", entry["service"])

	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, "loud", "json").GetLevel())
}
