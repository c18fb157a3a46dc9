package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	S3        S3Config
	JWT       JWTConfig
	Text      TextConfig
	Image     ImageConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	BodyLimitMB    int64
	IdempotencyTTL time.Duration
	// SessionIdle is how long an unused session store stays in memory
	SessionIdle time.Duration
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

// S3Config holds the S3-compatible archive used for exported plans
type S3Config struct {
	Endpoint string
	Region   string
	Bucket   string

	// PublicURL is the base of returned links; defaults to Endpoint
	PublicURL string
}

// Enabled reports whether an archive endpoint is configured
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// TextConfig selects the text model used for plans and quotes
type TextConfig struct {
	Provider string // openrouter | gemini | openai
	APIKey   string
	Model    string
	BaseURL  string
}

// ImageConfig holds the image inference endpoint configuration
type ImageConfig struct {
	APIKey   string
	Endpoint string
}

// TelemetryConfig holds OpenTelemetry exporter configuration
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string // host[:port]
	URLPathPrefix  string
	Headers        map[string]string
	ServiceVersion string
	Environment    string
}

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
)

const DefaultImageEndpoint = "https://router.huggingface.co/hf-inference/models/black-forest-labs/FLUX.1-schnell"

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("TEXT_PROVIDER", ProviderOpenRouter))

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			BodyLimitMB:    getEnvAsInt64("BODY_LIMIT_MB", 4),
			IdempotencyTTL: time.Duration(getEnvAsInt64("IDEMPOTENCY_TTL_MINUTES", 10)) * time.Minute,
			SessionIdle:    time.Duration(getEnvAsInt64("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "fitcoach"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		S3: S3Config{
			Endpoint: getEnv("S3_ENDPOINT", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Bucket:   getEnv("S3_BUCKET", "fitness-plans"),

			PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: time.Duration(getEnvAsInt64("SESSION_EXPIRY_HOURS", 24*30)) * time.Hour,
		},
		Text: TextConfig{
			Provider: provider,
			APIKey:   getEnv("TEXT_API_KEY", ""),
			Model:    getEnv("TEXT_MODEL", defaultModel(provider)),
			BaseURL:  getEnv("TEXT_BASE_URL", defaultBaseURL(provider)),
		},
		Image: ImageConfig{
			APIKey:   getEnv("HUGGINGFACE_API_KEY", ""),
			Endpoint: getEnv("IMAGE_ENDPOINT", DefaultImageEndpoint),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			URLPathPrefix:  getEnv("OTEL_URL_PATH_PREFIX", ""),
			Headers:        parseHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", "")),
			ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
			Environment:    getEnv("ENVIRONMENT", "development"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
// Model API keys are optional: a missing key fails the request, not startup.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Text.Provider {
	case ProviderOpenRouter, ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("TEXT_PROVIDER must be one of openrouter, gemini, openai (got %q)", c.Text.Provider)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("BODY_LIMIT_MB must be positive")
	}
	if c.Server.SessionIdle <= 0 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true")
	}
	return nil
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "google/gemini-2.0-flash-001"
	}
}

func defaultBaseURL(provider string) string {
	if provider == ProviderOpenRouter {
		return "https://openrouter.ai/api/v1"
	}
	return ""
}

// parseHeaders reads "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
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
