package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	SessionTTL         time.Duration
	StorageEndpoint    string
	StorageAccessKey   string
	StorageSecretKey   string
	StorageBucket      string
	StorageUseSSL      bool
	SignedURLTTL       time.Duration
	ExamCacheTTL       time.Duration
	MaxUploadMB        int
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Exam Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("signed_url.ttl", "15m")
	v.SetDefault("exam_cache.ttl", "5m")
	v.SetDefault("upload.max_mb", 3)
	v.SetDefault("login.max_attempts", 5)
	v.SetDefault("login.attempt_window", "5m")
	v.SetDefault("storage.bucket", "exam-portal")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	signedTTL, err := time.ParseDuration(v.GetString("signed_url.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid signed url ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("exam_cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid exam cache ttl: %w", err)
	}

	attemptWindow, err := time.ParseDuration(v.GetString("login.attempt_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid login attempt window: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		SessionTTL:         sessionTTL,
		StorageEndpoint:    v.GetString("storage.endpoint"),
		StorageAccessKey:   v.GetString("storage.access_key"),
		StorageSecretKey:   v.GetString("storage.secret_key"),
		StorageBucket:      v.GetString("storage.bucket"),
		StorageUseSSL:      v.GetBool("storage.use_ssl"),
		SignedURLTTL:       signedTTL,
		ExamCacheTTL:       cacheTTL,
		MaxUploadMB:        v.GetInt("upload.max_mb"),
		LoginMaxAttempts:   v.GetInt("login.max_attempts"),
		LoginAttemptWindow: attemptWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 3
	}

	if cfg.LoginMaxAttempts <= 0 {
		cfg.LoginMaxAttempts = 5
	}

	return cfg, nil
}
