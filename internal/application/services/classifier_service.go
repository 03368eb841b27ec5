package services

import (
	"context"
	"time"

	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ClassifierService decides which data sources a query needs.
type ClassifierService struct {
	llm      providers.CompletionProvider
	settings GenerationSettings
}

// NewClassifierService creates a new classifier service.
func NewClassifierService(llm providers.CompletionProvider, settings GenerationSettings) *ClassifierService {
	return &ClassifierService{
		llm:      llm,
		settings: settings,
	}
}

// Classify runs the classifier stage for a request.
func (s *ClassifierService) Classify(ctx context.Context, req entities.PipelineRequest) (result *entities.ClassifyResult, err error) {
	ctx, span := observability.StartSpan(ctx, "stage.classify")
	start := time.Now()
	defer func() {
		observability.RecordError(span, err)
		observability.RecordStage(ctx, "classify", time.Since(start), err)
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	classification, err := s.ClassifyQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("pipeline.classification", string(classification)),
		attribute.String("pipeline.role", string(req.Role())),
	)

	return &entities.ClassifyResult{
		PipelineRequest: req,
		Classification:  classification,
	}, nil
}

// ClassifyQuery asks the model for a category and normalizes its answer.
// An inference failure is returned as an error; it is never turned into a default category.
func (s *ClassifierService) ClassifyQuery(ctx context.Context, query string) (entities.Classification, error) {
	raw, err := s.llm.Complete(ctx, s.settings.request(buildClassificationPrompt(query)))
	if err != nil {
		return "", apperrors.NewDependencyError("query classification failed", err)
	}

	classification := entities.ParseClassification(raw)
	logger := observability.LoggerFromContext(ctx)
	if string(classification) != raw {
		logger.Debug().Str("raw", raw).Str("classification", string(classification)).Msg("normalized classifier output")
	}
	logger.Info().Str("classification", string(classification)).Msg("query classified")

	return classification, nil
}
