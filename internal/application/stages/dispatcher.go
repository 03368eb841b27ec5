package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zatekoja/medibot/internal/application/services"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
)

// Stage names accepted by the dispatcher.
const (
	StageClassify   = "classify"
	StageExtract    = "extract"
	StageSynthesize = "synthesize"
	StagePipeline   = "pipeline"
)

// Classifier runs the classifier stage.
type Classifier interface {
	Classify(ctx context.Context, req entities.PipelineRequest) (*entities.ClassifyResult, error)
}

// Extractor runs the extractor stage.
type Extractor interface {
	Extract(ctx context.Context, req entities.ExtractRequest) (*entities.ExtractResult, error)
}

// Synthesizer runs the synthesizer stage.
type Synthesizer interface {
	Synthesize(ctx context.Context, req entities.SynthesizeRequest) (*entities.SynthesizeResult, error)
}

// PipelineRunner runs all three stages in order.
type PipelineRunner interface {
	Run(ctx context.Context, req entities.PipelineRequest) (*services.PipelineResult, error)
}

type handlerFunc func(ctx context.Context, payload []byte) (interface{}, error)

// Dispatcher decodes a JSON payload for a named stage and runs it. It is the
// shared boundary behind the HTTP routes and the stage CLI.
type Dispatcher struct {
	handlers map[string]handlerFunc
}

// NewDispatcher creates a dispatcher. A nil pipeline leaves the pipeline stage unregistered.
func NewDispatcher(classifier Classifier, extractor Extractor, synthesizer Synthesizer, pipeline PipelineRunner) *Dispatcher {
	d := &Dispatcher{handlers: map[string]handlerFunc{}}

	d.handlers[StageClassify] = func(ctx context.Context, payload []byte) (interface{}, error) {
		var req entities.PipelineRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return classifier.Classify(ctx, req)
	}
	d.handlers[StageExtract] = func(ctx context.Context, payload []byte) (interface{}, error) {
		var req entities.ExtractRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return extractor.Extract(ctx, req)
	}
	d.handlers[StageSynthesize] = func(ctx context.Context, payload []byte) (interface{}, error) {
		var req entities.SynthesizeRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return synthesizer.Synthesize(ctx, req)
	}
	if pipeline != nil {
		d.handlers[StagePipeline] = func(ctx context.Context, payload []byte) (interface{}, error) {
			var req entities.PipelineRequest
			if err := decode(payload, &req); err != nil {
				return nil, err
			}
			return pipeline.Run(ctx, req)
		}
	}

	return d
}

// Stages returns the registered stage names in sorted order.
func (d *Dispatcher) Stages() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named stage on payload. A panic inside the stage is recovered
// and returned as an internal error.
func (d *Dispatcher) Invoke(ctx context.Context, stage string, payload []byte) (out interface{}, err error) {
	h, ok := d.handlers[stage]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("unknown stage %q", stage))
	}

	defer func() {
		if r := recover(); r != nil {
			observability.LoggerFromContext(ctx).Error().
				Str("stage", stage).
				Interface("panic", r).
				Msg("stage panicked")
			out = nil
			err = apperrors.NewInternalError(fmt.Sprintf("%s stage failed", stage), fmt.Errorf("%v", r))
		}
	}()

	out, err = h(ctx, payload)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ErrorRecord converts a stage error into the record returned in place of output.
func ErrorRecord(err error) entities.ErrorRecord {
	return entities.ErrorRecord{
		StatusCode: apperrors.StatusCode(err),
		Error:      apperrors.PublicMessage(err),
	}
}

func decode(payload []byte, v interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return apperrors.NewValidationError("Missing patientId or query")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid JSON payload: %v", err))
	}
	return nil
}
