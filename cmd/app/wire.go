//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/prolexis/analytics/internal/bootstrap"
	"github.com/prolexis/analytics/internal/domain/auth"
	"github.com/prolexis/analytics/internal/domain/billing"
	"github.com/prolexis/analytics/internal/domain/insight"
	"github.com/prolexis/analytics/internal/domain/legal"
	"github.com/prolexis/analytics/internal/infra/config"
	"github.com/prolexis/analytics/internal/infra/ingest"
	"github.com/prolexis/analytics/internal/infra/llm/chatgpt"
	httpiface "github.com/prolexis/analytics/internal/interface/http"
	"github.com/prolexis/analytics/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideInsightConfig,
		provideIngestConfig,
		provideAuthConfig,
		provideBillingConfig,
		provideLegalConfig,
		provideChatGPTClient,
		provideInsightCache,
		provideIngestPipeline,
		provideAuthRepository,
		provideBillingGateway,
		provideSubscriptionStore,
		provideDocumentStore,
		provideClientStore,
		provideTimeEntryStore,
		provideLegalStorage,
		insight.NewService,
		auth.NewService,
		billing.NewService,
		legal.NewService,
		wire.Bind(new(insight.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(insight.Ingester), new(*ingest.Pipeline)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
