//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/tealeaves/faq-assistant/internal/bootstrap"
	"github.com/tealeaves/faq-assistant/internal/domain/assistant"
	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
	"github.com/tealeaves/faq-assistant/internal/infra/config"
	httpiface "github.com/tealeaves/faq-assistant/internal/interface/http"
	"github.com/tealeaves/faq-assistant/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideIngestConfig,
		provideAssistantConfig,
		provideChatGPTClient,
		provideChatClient,
		provideEmbedder,
		provideVectorIndex,
		provideAssistantStore,
		provideBatchLoader,
		faqindex.NewService,
		assistant.NewService,
		wire.Bind(new(assistant.Retriever), new(faqindex.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
