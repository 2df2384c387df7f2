package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/prolexis/analytics/internal/domain/auth"
	"github.com/prolexis/analytics/internal/domain/billing"
	"github.com/prolexis/analytics/internal/domain/insight"
	"github.com/prolexis/analytics/internal/domain/legal"
	"github.com/prolexis/analytics/internal/infra/billingstore"
	"github.com/prolexis/analytics/internal/infra/config"
	"github.com/prolexis/analytics/internal/infra/ingest"
	"github.com/prolexis/analytics/internal/infra/insightcache"
	"github.com/prolexis/analytics/internal/infra/legalstore"
	"github.com/prolexis/analytics/internal/infra/llm/chatgpt"
	"github.com/prolexis/analytics/internal/infra/payment/stripe"
	"github.com/prolexis/analytics/internal/infra/userrepo"
)

func provideInsightConfig(cfg *config.Config) insight.Config {
	return insight.Config{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		SystemPrompt:    cfg.Insight.SystemPrompt,
		MaxSourceTokens: cfg.Insight.MaxSourceTokens,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideInsightCache(cfg *config.Config, logger *slog.Logger) insight.ResponseCache {
	if cfg.Insight.Redis.Enabled {
		client, err := dialValkey(cfg.Insight.Redis.Addr)
		if err != nil {
			logger.Error("valkey unavailable, falling back to memory response cache", "error", err)
			return insightcache.NewMemoryCache()
		}
		logger.Info("insight valkey cache enabled", "addr", cfg.Insight.Redis.Addr)
		return insightcache.NewValkeyCache(client, "insight")
	}
	return insightcache.NewMemoryCache()
}

func provideIngestConfig(cfg *config.Config) ingest.Config {
	return ingest.Config{
		FetchTimeout:    cfg.Ingest.FetchTimeout,
		MaxFetchBytes:   cfg.Ingest.MaxFetchBytes,
		MaxUploadBytes:  cfg.Ingest.MaxUploadBytes,
		MaxSourceTokens: cfg.Insight.MaxSourceTokens,
		UserAgent:       cfg.Ingest.UserAgent,
	}
}

func provideIngestPipeline(cfg ingest.Config, logger *slog.Logger) *ingest.Pipeline {
	return ingest.NewPipeline(cfg, logger)
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

func provideAuthRepository(cfg *config.Config, logger *slog.Logger) auth.Repository {
	fallback := userrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Auth.Postgres.DSN)
	if dsn == "" {
		logger.Info("auth postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Auth.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Auth.Postgres.MaxConns
	}
	if cfg.Auth.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Auth.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("auth postgres repository enabled")
	return userrepo.NewPostgresRepository(pool)
}

func provideBillingConfig(cfg *config.Config) billing.Config {
	return billing.Config{
		SuccessURL: cfg.Billing.SuccessURL,
		CancelURL:  cfg.Billing.CancelURL,
	}
}

func provideBillingGateway(cfg *config.Config) billing.PaymentGateway {
	return stripe.NewClient(cfg.Billing.Stripe.SecretKey, cfg.Billing.Stripe.BaseURL)
}

func provideSubscriptionStore(cfg *config.Config, logger *slog.Logger) billing.SubscriptionStore {
	if cfg.Billing.Redis.Enabled {
		client, err := dialValkey(cfg.Billing.Redis.Addr)
		if err != nil {
			logger.Error("valkey unavailable, falling back to memory subscription store", "error", err)
			return billingstore.NewMemoryStore()
		}
		logger.Info("billing valkey store enabled", "addr", cfg.Billing.Redis.Addr)
		return billingstore.NewValkeyStore(client, "billing")
	}
	return billingstore.NewMemoryStore()
}

func provideLegalConfig(cfg *config.Config) legal.Config {
	return legal.Config{MaxUploadBytes: cfg.Legal.MaxUploadBytes}
}

func provideDocumentStore() legal.DocumentStore {
	return legalstore.NewMemoryDocumentStore()
}

func provideClientStore() legal.ClientStore {
	return legalstore.NewMemoryClientStore()
}

func provideTimeEntryStore() legal.TimeEntryStore {
	return legalstore.NewMemoryTimeEntryStore()
}

func provideLegalStorage(cfg *config.Config, logger *slog.Logger) legal.ObjectStorage {
	if cfg.Legal.Storage.Enabled {
		storage, err := legalstore.NewS3Storage(
			cfg.Legal.Storage.Endpoint,
			cfg.Legal.Storage.AccessKey,
			cfg.Legal.Storage.SecretKey,
			cfg.Legal.Storage.Bucket,
			cfg.Legal.Storage.Region,
			logger,
		)
		if err != nil {
			logger.Error("s3 storage unavailable, falling back to memory storage", "error", err)
			return legalstore.NewMemoryStorage()
		}
		logger.Info("legal s3 storage enabled", "bucket", cfg.Legal.Storage.Bucket)
		return storage
	}
	return legalstore.NewMemoryStorage()
}

// dialValkey builds a client from either an address or a redis:// URL and
// verifies the connection before handing it out.
func dialValkey(addr string) (valkey.Client, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
