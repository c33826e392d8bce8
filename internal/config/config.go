// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"expense_backend/internal/platform/db"
	jwtmw "expense_backend/internal/platform/jwt"
	"expense_backend/internal/platform/redis"
)

// ErrMissingJWTSecret is returned by Validate when no signing key is configured.
var ErrMissingJWTSecret = errors.New(jwtmw.EnvKeyJWTSecret + " is not set")

// Config holds every setting the server reads at startup.
type Config struct {
	JWTSecret         string
	AccessTokenTTL    time.Duration // issued on registration
	LongLivedTokenTTL time.Duration // password-grant and external-identity logins

	FirebaseCredentialsFile string

	GeminiAPIKey      string
	GeminiModel       string
	GeminiRPM         int // requests per minute across the process; 0 = unlimited
	ReceiptOCREnabled bool

	DB              db.Config
	Redis           redis.Options
	ExpenseCacheTTL time.Duration

	CORSAllowedOrigins  []string
	ExternalHTTPTimeout time.Duration // 0 = no client-side timeout
	LogLevel            slog.Level
}

// Load seeds the process environment from envFile (when present) and
// reads the configuration. Variables already set in the environment win.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			slog.Info("env file not loaded; using process environment", "file", envFile)
		}
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) {
	cfg := Config{
		JWTSecret:               os.Getenv(jwtmw.EnvKeyJWTSecret),
		FirebaseCredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json"),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		DB:                      db.LoadConfigFromEnv(),
		Redis: redis.Options{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     os.Getenv("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	var err error
	if cfg.AccessTokenTTL, err = duration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.LongLivedTokenTTL, err = duration("LONG_LIVED_TOKEN_TTL", 500*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ExpenseCacheTTL, err = duration("EXPENSE_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ExternalHTTPTimeout, err = duration("EXTERNAL_HTTP_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.GeminiRPM, err = integer("GEMINI_REQUESTS_PER_MINUTE", 0); err != nil {
		return Config{}, err
	}
	if cfg.ReceiptOCREnabled, err = boolean("RECEIPT_OCR_ENABLED", false); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.AccessTokenTTL <= 0 || c.LongLivedTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func integer(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
