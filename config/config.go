// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const developmentJWTSecret = "your-secret-key"

// Config holds every setting the server reads at startup
type Config struct {
	Env            string
	Port           string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	JWTTTL         time.Duration
	LogLevel       string
	LogFormat      string
	UploadDir      string
	UploadMaxBytes int64
	AllowedOrigins []string
	RateLimit      int
	PostmarkToken  string
	EmailSender    string
	RequestTimeout time.Duration
}

// Development reports whether the insecure defaults are allowed
func (c *Config) Development() bool {
	return c.Env == "development"
}

// LoadDotEnv loads .env into the environment if the file exists. Variables
// already set win over the file.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "production"),
		Port:           getEnv("PORT", "8000"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "cheebo"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		PostmarkToken:  os.Getenv("POSTMARK_API_TOKEN"),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@cheebo.com"),
	}

	var err error
	if cfg.JWTTTL, err = getDurationEnv("JWT_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDurationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.UploadMaxBytes, err = getInt64Env("UPLOAD_MAX_BYTES", 5<<20); err != nil {
		return nil, err
	}
	rateLimit, err := getInt64Env("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = int(rateLimit)

	if cfg.JWTSecret == "" {
		if !cfg.Development() {
			return nil, fmt.Errorf("JWT_SECRET is required when APP_ENV is %q", cfg.Env)
		}
		cfg.JWTSecret = developmentJWTSecret
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.UploadMaxBytes)
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}

// getSliceEnv splits a comma-separated variable, dropping empty entries
func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
