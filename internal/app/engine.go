// Package app assembles the scoring engine from configuration. Both the HTTP
// server and the command line tool build through here.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

const (
	DataSourceLocal    = "local"
	DataSourceDatabase = "database"
)

// NewLLMProvider returns the configured provider. A nil provider with a nil
// error means augmentation is switched off and every outcome is degraded.
func NewLLMProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.LLMProvider, services.Embedder, error) {
	switch cfg.LLM.Provider {
	case "", "none":
		log.Warn("no LLM provider configured, augmentation disabled")
		return nil, nil, nil
	case "gemini":
		if cfg.LLM.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY is empty, augmentation disabled")
			return nil, nil, nil
		}
		gemini, err := services.NewGeminiService(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return gemini, gemini, nil
	case "openai":
		if cfg.LLM.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY is empty, augmentation disabled")
			return nil, nil, nil
		}
		provider, err := services.NewOpenAIService(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL, cfg.LLM.OpenAIModel)
		if err != nil {
			return nil, nil, err
		}
		// Role reference retrieval still needs Gemini embeddings.
		var embedder services.Embedder
		if cfg.LLM.GeminiAPIKey != "" {
			gemini, err := services.NewGeminiService(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel)
			if err != nil {
				return nil, nil, err
			}
			embedder = gemini
		}
		return provider, embedder, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}
}

// NewRoleStore builds the role store for the configured data source and loads
// it once. db is only needed for the database source.
func NewRoleStore(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*services.RoleStore, error) {
	var loader services.RoleLoader
	switch cfg.Roles.DataSource {
	case DataSourceLocal, "":
		loader = services.NewYAMLRoleLoader(cfg.Roles.Dir)
	case DataSourceDatabase:
		if db == nil {
			return nil, fmt.Errorf("DATA_SOURCE=database needs a database connection")
		}
		loader = services.NewDBRoleLoader(repositories.NewRoleRepository(db))
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q", cfg.Roles.DataSource)
	}

	store := services.NewRoleStore(loader, log)
	if err := store.Reload(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// NewOrchestrator wires extraction, baseline scoring and augmentation.
func NewOrchestrator(
	ctx context.Context,
	cfg *config.Config,
	roles services.RoleCatalog,
	log *zap.Logger,
	opts ...services.OrchestratorOption,
) (services.ScoringOrchestrator, error) {
	provider, embedder, err := NewLLMProvider(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var augmenter services.Augmenter
	if provider != nil {
		var retriever services.RoleContextRetriever
		if cfg.Qdrant.Enabled && embedder != nil {
			index, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
			if err != nil {
				return nil, err
			}
			retriever = services.NewRoleContextRetriever(embedder, index, 3)
		}

		augmenter = services.NewAugmenter(provider, retriever, services.AugmenterConfig{
			MaxChars:       cfg.Scoring.AugmentMaxChars,
			MaxAttempts:    cfg.Worker.RetryMaxAttempts,
			InitialDelay:   cfg.Worker.RetryInitialDelay,
			MaxDelay:       cfg.Worker.RetryMaxDelay,
			AttemptTimeout: cfg.Scoring.AugmentAttemptTimeout,
			Temperature:    0.2,
		}, log.Named("augmenter"))
		log.Info("augmentation enabled", zap.String("provider", provider.Name()))
	}

	return services.NewScoringOrchestrator(
		services.NewTextExtractor(),
		roles,
		services.NewBaselineScorer(),
		augmenter,
		services.OrchestratorConfig{AugmentTimeout: cfg.Scoring.AugmentTotalTimeout},
		log.Named("orchestrator"),
		opts...,
	), nil
}
