package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medibot/internal/adapters/search"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	"github.com/zatekoja/medibot/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag, file string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.StringVar(&file, "file", "data/guidelines.json", "clinical guidelines JSON file")
	flag.Parse()

	cfg, err := config.LoadWithVault(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Env, cfg.LogLevel)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("Invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, file, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, file string, reset bool) error {
	guidelines, err := loadGuidelines(file)
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		if err := tsClient.DropSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to drop guidelines collection")
		}
	}

	adapter := search.NewGuidelineAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	for i := range guidelines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := adapter.Index(ctx, &guidelines[i]); err != nil {
			log.Warn().Err(err).Str("guideline_id", guidelines[i].ID).Msg("Failed to index guideline")
			continue
		}
		indexed++
	}

	log.Info().Int("indexed", indexed).Int("total", len(guidelines)).Msg("Guidelines indexed")
	return nil
}

func loadGuidelines(path string) ([]entities.Guideline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guidelines file: %w", err)
	}

	var guidelines []entities.Guideline
	if err := json.Unmarshal(data, &guidelines); err != nil {
		return nil, fmt.Errorf("failed to parse guidelines: %w", err)
	}
	for i, g := range guidelines {
		if g.ID == "" || g.Title == "" || g.Body == "" {
			return nil, fmt.Errorf("guideline at index %d: id, title and body are required", i)
		}
	}
	return guidelines, nil
}
