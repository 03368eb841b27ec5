package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
)

// PipelineResult holds every stage output of one traversal.
type PipelineResult struct {
	RunID          string                     `json:"runId"`
	Classification *entities.ClassifyResult   `json:"classification"`
	Extraction     *entities.ExtractResult    `json:"extraction"`
	Answer         *entities.SynthesizeResult `json:"answer"`
}

// Pipeline composes the three stages in process. Stages stay independent: the
// pipeline only feeds one stage's output to the next.
type Pipeline struct {
	classifier  *ClassifierService
	extractor   *ExtractorService
	synthesizer *SynthesizerService
}

// NewPipeline creates a new pipeline.
func NewPipeline(classifier *ClassifierService, extractor *ExtractorService, synthesizer *SynthesizerService) *Pipeline {
	return &Pipeline{
		classifier:  classifier,
		extractor:   extractor,
		synthesizer: synthesizer,
	}
}

// Run classifies, extracts and synthesizes one request. A failing stage ends the run.
func (p *Pipeline) Run(ctx context.Context, req entities.PipelineRequest) (*PipelineResult, error) {
	runID := uuid.New().String()
	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	defer span.End()

	ctx = log.With().Str("run_id", runID).Logger().WithContext(ctx)
	logger := observability.LoggerFromContext(ctx)

	classified, err := p.classifier.Classify(ctx, req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	extracted, err := p.extractor.Extract(ctx, *classified)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	answer, err := p.synthesizer.Synthesize(ctx, extracted.SynthesizeRequest())
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	logger.Info().
		Str("classification", string(classified.Classification)).
		Str("role", string(extracted.CallerRole)).
		Msg("pipeline run complete")

	return &PipelineResult{
		RunID:          runID,
		Classification: classified,
		Extraction:     extracted,
		Answer:         answer,
	}, nil
}
