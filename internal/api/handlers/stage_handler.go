package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/zatekoja/medibot/internal/application/stages"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
)

const maxPayloadBytes = 1 << 20

// StageInvoker runs a named stage on a JSON payload.
type StageInvoker interface {
	Invoke(ctx context.Context, stage string, payload []byte) (interface{}, error)
	Stages() []string
}

// StageHandler exposes each pipeline stage as an HTTP endpoint.
type StageHandler struct {
	invoker StageInvoker
}

// NewStageHandler creates a new stage handler
func NewStageHandler(invoker StageInvoker) *StageHandler {
	return &StageHandler{invoker: invoker}
}

// InvokeStage handles POST /api/stages/{stage}
func (h *StageHandler) InvokeStage(w http.ResponseWriter, r *http.Request) {
	h.invoke(w, r, r.PathValue("stage"))
}

// Ask handles POST /api/ask by running the whole pipeline
func (h *StageHandler) Ask(w http.ResponseWriter, r *http.Request) {
	h.invoke(w, r, stages.StagePipeline)
}

// ListStages handles GET /api/stages
func (h *StageHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stages": h.invoker.Stages(),
	})
}

func (h *StageHandler) invoke(w http.ResponseWriter, r *http.Request, stage string) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		respondWithStageError(w, apperrors.NewValidationError("request body too large or unreadable"))
		return
	}

	out, err := h.invoker.Invoke(r.Context(), stage, payload)
	if err != nil {
		logger := observability.LoggerFromContext(r.Context())
		if apperrors.StatusCode(err) >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("stage", stage).Msg("stage failed")
		} else {
			logger.Info().Str("stage", stage).Str("reason", apperrors.PublicMessage(err)).Msg("stage rejected request")
		}
		respondWithStageError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, out)
}

func respondWithStageError(w http.ResponseWriter, err error) {
	rec := stages.ErrorRecord(err)
	respondWithJSON(w, rec.StatusCode, rec)
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
