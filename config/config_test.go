package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "PORT", "MONGODB_URI", "MONGODB_DATABASE", "JWT_SECRET", "JWT_TTL", "LOG_LEVEL", "LOG_FORMAT",
	"UPLOAD_DIR", "UPLOAD_MAX_BYTES", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "POSTMARK_API_TOKEN",
	"EMAIL_SENDER", "REQUEST_TIMEOUT",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "cheebo", cfg.MongoDatabase)
	assert.Equal(t, developmentJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://cheebo.tn, https://admin.cheebo.tn,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://cheebo.tn", "https://admin.cheebo.tn"}, cfg.AllowedOrigins)
	assert.Equal(t, 0, cfg.RateLimit)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"JWT_TTL", "a week"},
		{"REQUEST_TIMEOUT", "10"},
		{"UPLOAD_MAX_BYTES", "5MB"},
		{"UPLOAD_MAX_BYTES", "-1"},
		{"RATE_LIMIT_PER_MINUTE", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "development")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	// godotenv never overrides a variable that is set, even to ""
	t.Setenv("MONGODB_DATABASE", "")
	require.NoError(t, os.Unsetenv("MONGODB_DATABASE"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MONGODB_DATABASE=cheebo_test\nPORT=7000\n"), 0o600))
	t.Setenv("PORT", "7500")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "cheebo_test", os.Getenv("MONGODB_DATABASE"))
	assert.Equal(t, "7500", os.Getenv("PORT"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
