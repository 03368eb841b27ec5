package services

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ExtractorService fetches the data a classified request needs and applies the
// knowledge-base access policy.
type ExtractorService struct {
	store          providers.PatientRecordStore
	llm            providers.CompletionProvider
	guidelines     providers.GuidelineSearchProvider
	guidelineLimit int
	table          string
	settings       GenerationSettings
}

// NewExtractorService creates a new extractor service reading patient records from table.
func NewExtractorService(
	store providers.PatientRecordStore,
	llm providers.CompletionProvider,
	table string,
	settings GenerationSettings,
) *ExtractorService {
	return &ExtractorService{
		store:    store,
		llm:      llm,
		table:    table,
		settings: settings,
	}
}

// SetGuidelineSearch enables guideline excerpts in doctor knowledge prompts.
func (s *ExtractorService) SetGuidelineSearch(search providers.GuidelineSearchProvider, limit int) {
	if limit <= 0 {
		limit = 3
	}
	s.guidelines = search
	s.guidelineLimit = limit
}

// Extract runs the extractor stage. Any fetch failure aborts the stage; there is
// no partial output.
func (s *ExtractorService) Extract(ctx context.Context, req entities.ExtractRequest) (result *entities.ExtractResult, err error) {
	ctx, span := observability.StartSpan(ctx, "stage.extract")
	start := time.Now()
	defer func() {
		observability.RecordError(span, err)
		observability.RecordStage(ctx, "extract", time.Since(start), err)
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	classification := entities.ParseClassification(string(req.Classification))
	role := req.Role()
	observability.SetSpanAttributes(span,
		attribute.String("pipeline.classification", string(classification)),
		attribute.String("pipeline.role", string(role)),
	)

	result = &entities.ExtractResult{
		PipelineRequest: req.PipelineRequest,
		Classification:  classification,
		CallerRole:      role,
	}

	if classification.NeedsPatientData() {
		record, err := s.fetchPatientRecord(ctx, req.PatientID)
		if err != nil {
			return nil, err
		}
		result.PatientInfo = record
	}

	if classification.NeedsKnowledge() {
		var patientContext entities.PatientRecord
		if classification == entities.ClassificationBoth {
			patientContext = result.PatientInfo
		}
		kb, err := s.fetchKnowledge(ctx, role, classification, req.Query, patientContext)
		if err != nil {
			return nil, err
		}
		result.KBResponse = kb
	}

	return result, nil
}

func (s *ExtractorService) fetchPatientRecord(ctx context.Context, patientID string) (entities.PatientRecord, error) {
	logger := observability.LoggerFromContext(ctx)

	record, err := s.store.GetByKey(ctx, s.table, patientID)
	if errors.Is(err, providers.ErrRecordNotFound) {
		logger.Info().Str("table", s.table).Msg("patient record not found")
		return entities.NewNotFoundRecord(patientID), nil
	}
	if err != nil {
		return nil, apperrors.NewDependencyError("patient record lookup failed", err)
	}
	if record == nil {
		record = entities.PatientRecord{}
	}

	logger.Debug().Str("table", s.table).Int("fields", len(record)).Msg("patient record fetched")
	return record, nil
}

// fetchKnowledge never reaches the knowledge service for a patient caller.
func (s *ExtractorService) fetchKnowledge(
	ctx context.Context,
	role entities.CallerRole,
	classification entities.Classification,
	query string,
	patientContext entities.PatientRecord,
) (*entities.KnowledgeResult, error) {
	logger := observability.LoggerFromContext(ctx)

	if !role.CanAccessKnowledge() {
		logger.Info().Str("classification", string(classification)).Msg("knowledge access denied for patient role")
		observability.RecordKnowledgeDenied(ctx, string(classification))
		return entities.NewDeniedResult(), nil
	}

	var guidelines []entities.Guideline
	if s.guidelines != nil {
		found, err := s.guidelines.SearchGuidelines(ctx, query, s.guidelineLimit)
		if err != nil {
			return nil, apperrors.NewDependencyError("guideline search failed", err)
		}
		guidelines = found
	}

	prompt := buildKnowledgePrompt(query, patientContext, guidelines)
	guidance, err := s.llm.Complete(ctx, s.settings.request(prompt))
	if err != nil {
		return nil, apperrors.NewDependencyError("knowledge lookup failed", err)
	}

	sources := make([]string, 0, len(guidelines))
	for _, g := range guidelines {
		sources = append(sources, g.ID)
	}
	if len(sources) == 0 {
		sources = nil
	}

	result := entities.NewGuidanceResult(guidance, sources)
	logger.Info().
		Bool("uncertain", result.IsUncertain()).
		Int("guidelines", len(guidelines)).
		Msg("knowledge guidance fetched")
	return result, nil
}
