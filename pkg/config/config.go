package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject            string
	FirebaseServiceAccountPath string
	FirebaseServiceAccountJSON string

	// memory | firestore
	StorageBackend string
	ArchiveBucket  string

	// firebase | header
	AuthMode           string
	RateLimitPerMinute int

	SyncBaseURL        string
	SyncMaxAttempts    int
	SyncInitialBackoff time.Duration
	SyncTimeout        time.Duration
	SyncQueueSize      int

	GameTimezone       *time.Location
	SessionIdleTimeout time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:                 getEnv("SERVER_PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StorageBackend:             getEnv("STORAGE_BACKEND", "memory"),
		ArchiveBucket:              getEnv("ARCHIVE_BUCKET", ""),
		AuthMode:                   getEnv("AUTH_MODE", "header"),
		RateLimitPerMinute:         getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		SyncBaseURL:                getEnv("SYNC_BASE_URL", ""),
		SyncMaxAttempts:            getEnvAsInt("SYNC_MAX_ATTEMPTS", 3),
		SyncInitialBackoff:         getEnvAsDuration("SYNC_INITIAL_BACKOFF", time.Second),
		SyncTimeout:                getEnvAsDuration("SYNC_TIMEOUT", 10*time.Second),
		SyncQueueSize:              getEnvAsInt("SYNC_QUEUE_SIZE", 256),
		SessionIdleTimeout:         getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}

	loc, err := time.LoadLocation(getEnv("GAME_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid GAME_TIMEZONE: %w", err)
	}
	config.GameTimezone = loc

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "memory", "firestore":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.AuthMode {
	case "firebase", "header":
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}

	if c.AuthMode == "header" && c.Environment == "production" {
		return fmt.Errorf("AUTH_MODE=header is not allowed in production")
	}

	if c.needsFirebase() && c.FirebaseProject == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required for firestore storage or firebase auth")
	}

	if c.SyncMaxAttempts < 1 {
		return fmt.Errorf("SYNC_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

func (c *Config) needsFirebase() bool {
	return c.StorageBackend == "firestore" || c.AuthMode == "firebase" || c.ArchiveBucket != ""
}

// NeedsFirebase reports whether any configured backend talks to Google Cloud.
func (c *Config) NeedsFirebase() bool {
	return c.needsFirebase()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
