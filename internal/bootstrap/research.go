package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/gemini"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/llmhttp"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
)

// BuildResearchProvider selects the research backend named by cfg.Provider.
//
//nolint:ireturn // the worker only depends on the provider port.
func BuildResearchProvider(ctx context.Context, cfg config.ResearchConfig, logger *slog.Logger) (core.ResearchProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		provider core.ResearchProvider
		err      error
	)
	switch cfg.Provider {
	case config.ResearchProviderHTTP:
		provider, err = llmhttp.New(llmhttp.Options{Config: cfg.HTTP, Model: cfg.Model})
	case config.ResearchProviderGemini, "":
		provider, err = gemini.New(ctx, gemini.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.Model})
	default:
		return nil, fmt.Errorf("unknown research provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s provider: %w", cfg.Provider, err)
	}

	logger.Info("research provider configured",
		"provider", provider.Name(),
		"model", cfg.Model,
		"client_credentials", cfg.Provider == config.ResearchProviderHTTP && cfg.HTTP.UsesClientCredentials(),
	)
	return provider, nil
}
