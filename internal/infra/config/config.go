package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Insight InsightConfig `yaml:"insight"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Auth    AuthConfig    `yaml:"auth"`
	Billing BillingConfig `yaml:"billing"`
	Legal   LegalConfig   `yaml:"legal"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// InsightConfig controls the analysis domain.
type InsightConfig struct {
	SystemPrompt    string      `yaml:"systemPrompt"`
	MaxSourceTokens int         `yaml:"maxSourceTokens"`
	Redis           RedisConfig `yaml:"redis"`
}

// IngestConfig bounds source fetching and file extraction.
type IngestConfig struct {
	FetchTimeout   time.Duration `yaml:"fetchTimeout"`
	MaxFetchBytes  int64         `yaml:"maxFetchBytes"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	UserAgent      string        `yaml:"userAgent"`
}

// AuthConfig drives token issuance and the optional Google sign-in.
type AuthConfig struct {
	Secret          string         `yaml:"secret"`
	TokenTTL        time.Duration  `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration  `yaml:"refreshTokenTtl"`
	Google          GoogleConfig   `yaml:"google"`
	Postgres        PostgresConfig `yaml:"postgres"`
}

// GoogleConfig holds OAuth client settings for Google sign-in.
type GoogleConfig struct {
	ClientID             string `yaml:"clientId"`
	ClientSecret         string `yaml:"clientSecret"`
	RedirectURL          string `yaml:"redirectUrl"`
	TokenEncryptionKey   string `yaml:"tokenEncryptionKey"`
	PostLoginRedirectURL string `yaml:"postLoginRedirectUrl"`
}

// BillingConfig controls checkout and subscription storage.
type BillingConfig struct {
	Stripe     StripeConfig `yaml:"stripe"`
	SuccessURL string       `yaml:"successUrl"`
	CancelURL  string       `yaml:"cancelUrl"`
	Redis      RedisConfig  `yaml:"redis"`
}

// StripeConfig carries the payment gateway credentials.
type StripeConfig struct {
	SecretKey string `yaml:"secretKey"`
	BaseURL   string `yaml:"baseUrl"`
}

// LegalConfig controls the document management domain.
type LegalConfig struct {
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	Storage        StorageConfig `yaml:"storage"`
}

// StorageConfig points at an S3 compatible bucket for document blobs.
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("INSIGHT_SYSTEM_PROMPT"); v != "" {
		cfg.Insight.SystemPrompt = v
	}
	if v := os.Getenv("INSIGHT_MAX_SOURCE_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Insight.MaxSourceTokens = parsed
		}
	}
	if v := os.Getenv("INSIGHT_REDIS_ENABLED"); v != "" {
		cfg.Insight.Redis.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("INSIGHT_REDIS_ADDR"); v != "" {
		cfg.Insight.Redis.Addr = v
	}
	if v := os.Getenv("INGEST_FETCH_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Ingest.FetchTimeout = parsed
		}
	}
	if v := os.Getenv("INGEST_MAX_FETCH_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Ingest.MaxFetchBytes = parsed
		}
	}
	if v := os.Getenv("INGEST_MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Ingest.MaxUploadBytes = parsed
		}
	}
	if v := os.Getenv("INGEST_USER_AGENT"); v != "" {
		cfg.Ingest.UserAgent = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.RedirectURL = v
	}
	if v := os.Getenv("GOOGLE_TOKEN_ENCRYPTION_KEY"); v != "" {
		cfg.Auth.Google.TokenEncryptionKey = v
	}
	if v := os.Getenv("GOOGLE_POST_LOGIN_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.PostLoginRedirectURL = v
	}
	if v := os.Getenv("AUTH_POSTGRES_DSN"); v != "" {
		cfg.Auth.Postgres.DSN = v
	}
	if v := os.Getenv("AUTH_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Auth.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("AUTH_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Auth.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Billing.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_BASE_URL"); v != "" {
		cfg.Billing.Stripe.BaseURL = v
	}
	if v := os.Getenv("BILLING_SUCCESS_URL"); v != "" {
		cfg.Billing.SuccessURL = v
	}
	if v := os.Getenv("BILLING_CANCEL_URL"); v != "" {
		cfg.Billing.CancelURL = v
	}
	if v := os.Getenv("BILLING_REDIS_ENABLED"); v != "" {
		cfg.Billing.Redis.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("BILLING_REDIS_ADDR"); v != "" {
		cfg.Billing.Redis.Addr = v
	}
	if v := os.Getenv("LEGAL_MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Legal.MaxUploadBytes = parsed
		}
	}
	if v := os.Getenv("LEGAL_STORAGE_ENABLED"); v != "" {
		cfg.Legal.Storage.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LEGAL_STORAGE_ENDPOINT"); v != "" {
		cfg.Legal.Storage.Endpoint = v
	}
	if v := os.Getenv("LEGAL_STORAGE_ACCESS_KEY"); v != "" {
		cfg.Legal.Storage.AccessKey = v
	}
	if v := os.Getenv("LEGAL_STORAGE_SECRET_KEY"); v != "" {
		cfg.Legal.Storage.SecretKey = v
	}
	if v := os.Getenv("LEGAL_STORAGE_BUCKET"); v != "" {
		cfg.Legal.Storage.Bucket = v
	}
	if v := os.Getenv("LEGAL_STORAGE_REGION"); v != "" {
		cfg.Legal.Storage.Region = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				// Multipart uploads exceed the retry body buffer.
				Exclude: []string{
					"/api/v1/insights/file",
					"/api/v1/legal/documents",
				},
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Insight: InsightConfig{
			MaxSourceTokens: 6000,
			Redis: RedisConfig{
				Enabled: false,
				Addr:    "",
			},
		},
		Ingest: IngestConfig{
			FetchTimeout:   15 * time.Second,
			MaxFetchBytes:  2 << 20,
			MaxUploadBytes: 5 << 20,
			UserAgent:      "Mozilla/5.0 (compatible; ProlexisAnalytics/1.0)",
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-change-me",
			TokenTTL:        24 * time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
			Postgres: PostgresConfig{
				DSN:      "",
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Billing: BillingConfig{
			SuccessURL: "https://prolexisanalytics.com/payment-success",
			CancelURL:  "https://prolexisanalytics.com/payment-cancelled",
			Redis: RedisConfig{
				Enabled: false,
				Addr:    "",
			},
		},
		Legal: LegalConfig{
			MaxUploadBytes: 16 << 20,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 {
		return errors.New("http.readTimeout must be positive")
	}
	if c.HTTP.WriteTimeout <= 0 {
		return errors.New("http.writeTimeout must be positive")
	}
	if c.Insight.MaxSourceTokens <= 0 {
		return errors.New("insight.maxSourceTokens must be positive")
	}
	if c.Insight.Redis.Enabled && strings.TrimSpace(c.Insight.Redis.Addr) == "" {
		return errors.New("insight.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Ingest.FetchTimeout <= 0 {
		return errors.New("ingest.fetchTimeout must be positive")
	}
	if c.Ingest.MaxFetchBytes <= 0 {
		return errors.New("ingest.maxFetchBytes must be positive")
	}
	if c.Ingest.MaxUploadBytes <= 0 {
		return errors.New("ingest.maxUploadBytes must be positive")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth.refreshTokenTtl must be positive")
	}
	if c.Billing.SuccessURL == "" {
		return errors.New("billing.successUrl cannot be empty")
	}
	if c.Billing.CancelURL == "" {
		return errors.New("billing.cancelUrl cannot be empty")
	}
	if c.Billing.Redis.Enabled && strings.TrimSpace(c.Billing.Redis.Addr) == "" {
		return errors.New("billing.redis.addr cannot be empty when redis storage is enabled")
	}
	if c.Legal.MaxUploadBytes <= 0 {
		return errors.New("legal.maxUploadBytes must be positive")
	}
	if c.Legal.Storage.Enabled {
		if strings.TrimSpace(c.Legal.Storage.Endpoint) == "" {
			return errors.New("legal.storage.endpoint cannot be empty when storage is enabled")
		}
		if strings.TrimSpace(c.Legal.Storage.Bucket) == "" {
			return errors.New("legal.storage.bucket cannot be empty when storage is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
