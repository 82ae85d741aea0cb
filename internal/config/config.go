package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
	OpenRouter OpenRouterConfig
	S3         S3Config
	JWT        JWTConfig
	IPaymu     IPaymuConfig
	OTEL       OTELConfig
	Tracking   TrackingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// FirebaseConfig holds Firebase Admin SDK configuration
type FirebaseConfig struct {
	ProjectID   string
	PrivateKey  string // Base64 encoded
	ClientEmail string
}

// OpenRouterConfig holds the vision model settings
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// S3Config points at the bucket holding meal photos
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// JWTConfig holds app token settings
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// IPaymuConfig holds payment gateway credentials. Empty credentials select
// the mock provider.
type IPaymuConfig struct {
	VA        string
	APIKey    string
	BaseURL   string
	NotifyURL string
}

// OTELConfig holds OpenTelemetry export settings
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// TrackingConfig tunes meal tracking behaviour
type TrackingConfig struct {
	Timezone             string
	FreeDailyAnalyses    int64
	PremiumDailyAnalyses int64
	ProgressCacheTTL     time.Duration
	IdempotencyTTL       time.Duration
	DataChangedChannel   string
}

// Location resolves the configured timezone, falling back to UTC
func (t TrackingConfig) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 5),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "platepal"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
			PrivateKey:  getEnv("FIREBASE_PRIVATE_KEY", ""),
			ClientEmail: getEnv("FIREBASE_CLIENT_EMAIL", ""),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			Model:   getEnv("OPENROUTER_MODEL", "google/gemini-2.0-flash-001"),
			BaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:8333"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "meal-photos"),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		IPaymu: IPaymuConfig{
			VA:        getEnv("IPAYMU_VA", ""),
			APIKey:    getEnv("IPAYMU_API_KEY", ""),
			BaseURL:   getEnv("IPAYMU_BASE_URL", "https://sandbox.ipaymu.com"),
			NotifyURL: getEnv("PAYMENT_NOTIFY_URL", ""),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "platepal-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
		Tracking: TrackingConfig{
			Timezone:             getEnv("APP_TIMEZONE", "UTC"),
			FreeDailyAnalyses:    getEnvAsInt64("FREE_DAILY_ANALYSES", 3),
			PremiumDailyAnalyses: getEnvAsInt64("PREMIUM_DAILY_ANALYSES", 50),
			ProgressCacheTTL:     getEnvAsDuration("PROGRESS_CACHE_TTL", 10*time.Minute),
			IdempotencyTTL:       getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
			DataChangedChannel:   getEnv("DATA_CHANGED_CHANNEL", "platepal:data-changed"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.Firebase.PrivateKey == "" {
		return fmt.Errorf("FIREBASE_PRIVATE_KEY is required")
	}
	if c.Firebase.ClientEmail == "" {
		return fmt.Errorf("FIREBASE_CLIENT_EMAIL is required")
	}
	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := time.LoadLocation(c.Tracking.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q is not a valid IANA zone: %w", c.Tracking.Timezone, err)
	}
	if c.Tracking.FreeDailyAnalyses < 0 || c.Tracking.PremiumDailyAnalyses < c.Tracking.FreeDailyAnalyses {
		return fmt.Errorf("PREMIUM_DAILY_ANALYSES must be >= FREE_DAILY_ANALYSES >= 0")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
