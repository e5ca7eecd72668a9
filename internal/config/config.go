// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// TokenSecret is the shared HMAC secret for signing access and refresh JWTs (HS256).
	TokenSecret string `mapstructure:"TOKEN_SECRET"`
	// JWTIssuer is the iss claim (e.g. "snapfeed-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "snapfeed-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment ("development", "production"). Refresh
	// cookies are marked Secure when production.
	Env string `mapstructure:"APP_ENV"`

	// OpenAIAPIKey is the API key for the captioning model. Captioning is
	// disabled when empty.
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	// OpenAIModel is the vision-capable chat model used for captioning.
	OpenAIModel string `mapstructure:"OPENAI_MODEL"`
	// CaptionMaxAttempts is the max model invocation attempts per image.
	CaptionMaxAttempts int `mapstructure:"CAPTION_MAX_ATTEMPTS"`
	// CaptionBaseDelay is the first retry backoff delay (doubles per attempt).
	CaptionBaseDelay string `mapstructure:"CAPTION_BASE_DELAY"`

	// UploadDir is the directory for uploaded images when disk storage is used.
	UploadDir string `mapstructure:"UPLOAD_DIR"`
	// PublicBaseURL is the externally reachable base URL used to build upload URLs.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	// S3Bucket enables S3 upload storage when non-empty; disk storage otherwise.
	S3Bucket string `mapstructure:"S3_BUCKET"`
	// S3Region is the bucket region.
	S3Region string `mapstructure:"S3_REGION"`
	// S3Endpoint overrides the S3 endpoint (e.g. a MinIO address); empty for AWS.
	S3Endpoint string `mapstructure:"S3_ENDPOINT"`
	// S3AccessKey / S3SecretKey are static credentials for the bucket.
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`

	// OTLPEndpoint is the OTLP collector endpoint; telemetry is a no-op when empty.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure disables TLS for the OTLP exporter.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("TOKEN_SECRET", "")
	v.SetDefault("JWT_ISSUER", "snapfeed-auth")
	v.SetDefault("JWT_AUDIENCE", "snapfeed-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("CAPTION_MAX_ATTEMPTS", 5)
	v.SetDefault("CAPTION_BASE_DELAY", "1s")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("config: TOKEN_SECRET must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.CaptionMaxAttempts <= 0 {
		cfg.CaptionMaxAttempts = 5
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// CaptionRetryBaseDelay parses CaptionBaseDelay. Returns 1s if unset or invalid.
func (c *Config) CaptionRetryBaseDelay() time.Duration {
	d, err := time.ParseDuration(c.CaptionBaseDelay)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// Production reports whether the app runs with production hardening (secure cookies).
func (c *Config) Production() bool {
	return c.Env == "production"
}
