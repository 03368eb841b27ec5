package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medibot/internal/application/services"
	"github.com/zatekoja/medibot/internal/bootstrap"
	"github.com/zatekoja/medibot/internal/evaluation"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	"github.com/zatekoja/medibot/pkg/config"
)

// evaluate runs the classifier against a labeled query set and fails when
// routing quality drops below the guardrails.
func main() {
	goldenPath := flag.String("golden", "config/golden_queries.json", "path to the golden query set")
	minAccuracy := flag.Float64("min-accuracy", 0.8, "minimum overall accuracy")
	minRecall := flag.Float64("min-recall", 0.6, "minimum recall for every classification")
	maxErrorRate := flag.Float64("max-error-rate", 0.05, "maximum share of failed classifications")
	flag.Parse()

	cfg, err := config.LoadWithVault(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitStderrLogger(cfg.OTEL.ServiceName+"-evaluate", cfg.Env, cfg.LogLevel)

	queries, err := evaluation.LoadGoldenQueries(*goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("Invalid golden queries")
	}

	llm, err := bootstrap.NewCompletionProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize completion provider")
	}
	classifier := services.NewClassifierService(llm,
		services.DefaultClassifierSettings.WithModel(bootstrap.StageModel(cfg, cfg.Pipeline.ClassifierModel)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := evaluation.NewRunner(classifier).Run(ctx, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinAccuracy:  *minAccuracy,
		MinRecall:    *minRecall,
		MaxErrorRate: *maxErrorRate,
	})
	if err := guardrails.Check(summary); err != nil {
		log.Error().Err(err).Msg("Classifier below guardrails")
		stop()
		os.Exit(1)
	}
	log.Info().Float64("accuracy", summary.Accuracy).Int("queries", summary.TotalQueries).Msg("Classifier within guardrails")
}
