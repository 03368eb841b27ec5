package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medibot/internal/adapters/cache"
	"github.com/zatekoja/medibot/internal/adapters/database"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	"github.com/zatekoja/medibot/pkg/config"
)

type seedRecord struct {
	PatientID string                 `json:"patient_id"`
	Data      entities.PatientRecord `json:"data"`
}

type recordWriter interface {
	Upsert(ctx context.Context, table, key string, record entities.PatientRecord) error
}

type recordInvalidator interface {
	Invalidate(ctx context.Context, table, key string) error
}

func main() {
	file := flag.String("file", "data/patients.json", "patient records JSON file")
	flag.Parse()

	cfg, err := config.LoadWithVault(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Env, cfg.LogLevel)

	records, err := loadRecords(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load patient records")
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	table := cfg.Pipeline.PatientTable
	adapter := database.NewPatientRecordAdapter(pgClient)
	if err := adapter.EnsureTable(ctx, table); err != nil {
		log.Fatal().Err(err).Str("table", table).Msg("Failed to create patient table")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Str("table", table).Msg("RESET_DB=true detected, truncating table before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, fmt.Sprintf(`TRUNCATE TABLE %q`, table)); err != nil {
			log.Fatal().Err(err).Msg("Failed to truncate patient table")
		}
	}

	var invalidator recordInvalidator
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cached patient records will expire on their own")
		} else {
			defer redisClient.Close()
			invalidator = database.NewCachedPatientRecordAdapter(adapter, cache.NewRedisAdapter(redisClient), cfg.Pipeline.RecordCacheTTL)
		}
	}

	seeded := seedRecords(ctx, adapter, invalidator, table, records)
	log.Info().Int("count", seeded).Str("table", table).Msg("Seeding complete")
}

// seedRecords upserts every record and drops any cached copy so readers see the new data.
// It returns the number of records written.
func seedRecords(ctx context.Context, w recordWriter, inv recordInvalidator, table string, records []seedRecord) int {
	seeded := 0
	for _, r := range records {
		if r.PatientID == "" {
			r.PatientID = uuid.New().String()
		}
		if err := w.Upsert(ctx, table, r.PatientID, r.Data); err != nil {
			log.Error().Err(err).Str("patient_id", r.PatientID).Msg("Failed to seed patient record")
			continue
		}
		if inv != nil {
			if err := inv.Invalidate(ctx, table, r.PatientID); err != nil {
				log.Warn().Err(err).Str("patient_id", r.PatientID).Msg("Failed to invalidate cached patient record")
			}
		}
		seeded++
		log.Info().Str("patient_id", r.PatientID).Msg("Seeded patient record")
	}
	return seeded
}

func loadRecords(path string) ([]seedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
