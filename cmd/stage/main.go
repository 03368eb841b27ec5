package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medibot/internal/application/stages"
	"github.com/zatekoja/medibot/internal/bootstrap"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	"github.com/zatekoja/medibot/pkg/config"
)

// stage runs one pipeline stage: a JSON request on stdin, the JSON result or error
// record on stdout. The exit status is non-zero when an error record is written.
func main() {
	stageName := flag.String("stage", "", "stage to run: classify, extract, synthesize or pipeline")
	flag.Parse()

	if *stageName == "" {
		fmt.Fprintln(os.Stderr, "usage: stage -stage <classify|extract|synthesize|pipeline> < request.json")
		os.Exit(2)
	}

	cfg, err := config.LoadWithVault(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitStderrLogger(cfg.OTEL.ServiceName+"-stage", cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}

	code := run(ctx, components.Dispatcher, strings.ToLower(*stageName), os.Stdin, os.Stdout)
	stop()
	if err := components.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close clients")
	}
	os.Exit(code)
}

func run(ctx context.Context, dispatcher *stages.Dispatcher, stage string, in io.Reader, out io.Writer) int {
	payload, err := io.ReadAll(in)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read request")
		return 1
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	result, err := dispatcher.Invoke(ctx, stage, payload)
	if err != nil {
		enc.Encode(stages.ErrorRecord(err))
		return 1
	}
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("Failed to write result")
		return 1
	}
	return 0
}
