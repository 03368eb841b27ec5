package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medibot/internal/adapters/cache"
	"github.com/zatekoja/medibot/internal/adapters/database"
	"github.com/zatekoja/medibot/internal/adapters/search"
	"github.com/zatekoja/medibot/internal/application/services"
	"github.com/zatekoja/medibot/internal/application/stages"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/breaker"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/ollama"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/openai"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medibot/pkg/config"
)

// Components holds the long-lived service handles of one process.
type Components struct {
	Classifier  *services.ClassifierService
	Extractor   *services.ExtractorService
	Synthesizer *services.SynthesizerService
	Pipeline    *services.Pipeline
	Dispatcher  *stages.Dispatcher

	// HealthChecks maps a dependency name to its probe.
	HealthChecks map[string]func(ctx context.Context) error

	closers []func() error
}

// Close releases every client opened by Build.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewCompletionProvider returns the client selected by LLM_PROVIDER.
// The client is wrapped in a circuit breaker unless LLM_BREAKER_FAILURES is 0.
func NewCompletionProvider(cfg *config.Config) (providers.CompletionProvider, error) {
	var llm providers.CompletionProvider
	switch cfg.LLM.Provider {
	case config.LLMProviderOpenAI:
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		llm = client
	case config.LLMProviderOllama:
		llm = ollama.NewClient(&cfg.Ollama)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}

	failures := cfg.LLM.BreakerFailures
	if failures < 0 {
		failures = 0
	}
	return breaker.Wrap(cfg.LLM.Provider, llm, breaker.Settings{
		ConsecutiveFailures: uint32(failures),
		OpenTimeout:         cfg.LLM.BreakerTimeout,
	}), nil
}

// StageModel returns override, or the selected provider's model when override is empty.
func StageModel(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	if cfg.LLM.Provider == config.LLMProviderOllama {
		return cfg.Ollama.Model
	}
	return cfg.OpenAI.Model
}

// llmHealthCheck returns nil when the provider has no breaker to report on.
func llmHealthCheck(llm providers.CompletionProvider) func(ctx context.Context) error {
	if cb, ok := llm.(*breaker.CompletionProvider); ok {
		return cb.Check
	}
	return nil
}

// Build connects to every configured backing service and assembles the stages.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	c := &Components{HealthChecks: map[string]func(ctx context.Context) error{}}

	llm, err := NewCompletionProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion provider: %w", err)
	}
	if check := llmHealthCheck(llm); check != nil {
		c.HealthChecks["llm"] = check
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, pgClient.Close)
	c.HealthChecks["postgres"] = pgClient.Ping

	var store providers.PatientRecordStore = database.NewPatientRecordAdapter(pgClient)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, patient record cache disabled")
		} else {
			c.closers = append(c.closers, redisClient.Close)
			c.HealthChecks["redis"] = redisClient.Ping
			store = database.NewCachedPatientRecordAdapter(store, cache.NewRedisAdapter(redisClient), cfg.Pipeline.RecordCacheTTL)
			log.Info().Dur("ttl", cfg.Pipeline.RecordCacheTTL).Msg("patient record cache enabled")
		}
	}

	c.Classifier = services.NewClassifierService(llm,
		services.DefaultClassifierSettings.WithModel(StageModel(cfg, cfg.Pipeline.ClassifierModel)))
	c.Extractor = services.NewExtractorService(store, llm, cfg.Pipeline.PatientTable,
		services.DefaultKnowledgeSettings.WithModel(StageModel(cfg, cfg.Pipeline.KnowledgeModel)))
	c.Synthesizer = services.NewSynthesizerService(llm,
		services.DefaultSynthesizerSettings.WithModel(StageModel(cfg, cfg.Pipeline.SynthesizerModel)))

	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			c.Close()
			return nil, err
		}
		guidelines := search.NewGuidelineAdapter(tsClient)
		if err := guidelines.InitSchema(ctx); err != nil {
			c.Close()
			return nil, err
		}
		c.Extractor.SetGuidelineSearch(guidelines, cfg.Pipeline.GuidelineLimit)
		log.Info().Int("limit", cfg.Pipeline.GuidelineLimit).Msg("guideline search enabled")
	}

	c.Pipeline = services.NewPipeline(c.Classifier, c.Extractor, c.Synthesizer)
	c.Dispatcher = stages.NewDispatcher(c.Classifier, c.Extractor, c.Synthesizer, c.Pipeline)

	log.Info().
		Str("provider", cfg.LLM.Provider).
		Str("table", cfg.Pipeline.PatientTable).
		Strs("stages", c.Dispatcher.Stages()).
		Msg("pipeline ready")
	return c, nil
}
