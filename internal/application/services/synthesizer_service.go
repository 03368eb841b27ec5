package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// SynthesizerService turns the fetched context into the final answer.
type SynthesizerService struct {
	llm      providers.CompletionProvider
	settings GenerationSettings
}

// NewSynthesizerService creates a new synthesizer service.
func NewSynthesizerService(llm providers.CompletionProvider, settings GenerationSettings) *SynthesizerService {
	return &SynthesizerService{
		llm:      llm,
		settings: settings,
	}
}

// Synthesize runs the synthesizer stage.
func (s *SynthesizerService) Synthesize(ctx context.Context, req entities.SynthesizeRequest) (result *entities.SynthesizeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "stage.synthesize")
	start := time.Now()
	defer func() {
		observability.RecordError(span, err)
		observability.RecordStage(ctx, "synthesize", time.Since(start), err)
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	role := req.Role()
	contextText := buildSynthesisContext(req.PatientInfo, req.KBResponse, role)
	observability.SetSpanAttributes(span,
		attribute.String("pipeline.role", string(role)),
		attribute.Bool("pipeline.context_empty", contextText == ""),
	)

	result = &entities.SynthesizeResult{PipelineRequest: req.PipelineRequest}

	if contextText == "" {
		observability.LoggerFromContext(ctx).Info().Msg("no usable context, answering insufficient context")
		result.FinalAnswer = InsufficientContextAnswer
		return result, nil
	}

	raw, err := s.llm.Complete(ctx, s.settings.request(buildSynthesisPrompt(req.Query, contextText)))
	if err != nil {
		return nil, apperrors.NewDependencyError("answer synthesis failed", err)
	}

	result.FinalAnswer = normalizeAnswer(raw)
	return result, nil
}

// buildSynthesisContext applies the knowledge access policy a second time. A patient
// caller holding any knowledge payload only ever sees the fixed denial note; the
// caller-supplied message text is never copied into the prompt.
func buildSynthesisContext(record entities.PatientRecord, kb *entities.KnowledgeResult, role entities.CallerRole) string {
	var sb strings.Builder

	if record.HasData() {
		sb.WriteString("\nPatient Info:\n")
		sb.WriteString(record.JSON())
	}

	if kb != nil {
		switch {
		case role.CanAccessKnowledge() && !kb.Denied:
			if kb.Guidance != "" {
				sb.WriteString("\nKnowledge Base Response:\n")
				sb.WriteString(kb.Guidance)
			}
		case kb.Denied || kb.Guidance != "" || kb.Message != "":
			sb.WriteString("\nNote:\n")
			sb.WriteString(entities.KnowledgeDeniedMessage)
		}
	}

	return sb.String()
}

// normalizeAnswer collapses every spelling of the insufficient-context reply to the literal.
func normalizeAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return InsufficientContextAnswer
	}

	bare := strings.ToLower(strings.Trim(answer, " \t\n\"'`.!"))
	switch bare {
	case "insufficient context", "insuddicient context", "insufficient information":
		return InsufficientContextAnswer
	}
	return answer
}
