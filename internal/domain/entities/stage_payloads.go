package entities

import (
	"strings"

	apperrors "github.com/zatekoja/medibot/pkg/errors"
)

// PipelineRequest is the caller input carried unchanged through every stage.
type PipelineRequest struct {
	PatientID string `json:"patientId"`
	Query     string `json:"query"`
	DoctorID  string `json:"doctorId,omitempty"`
}

// Validate checks the required fields.
func (r PipelineRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" || strings.TrimSpace(r.Query) == "" {
		return apperrors.NewValidationError("Missing patientId or query")
	}
	return nil
}

// Role derives the caller role. The doctor identifier is the only source of truth,
// so a role field supplied by a caller is never trusted.
func (r PipelineRequest) Role() CallerRole {
	return RoleFor(r.DoctorID)
}

// ClassifyResult is the classifier stage output and the extractor stage input.
type ClassifyResult struct {
	PipelineRequest
	Classification Classification `json:"classification"`
}

// ExtractRequest is the extractor stage input.
type ExtractRequest = ClassifyResult

// ExtractResult is the extractor stage output. PatientInfo encodes as null when no
// lookup ran and as {} when the stored record is empty.
type ExtractResult struct {
	PipelineRequest
	Classification Classification   `json:"classification"`
	CallerRole     CallerRole       `json:"callerRole"`
	PatientInfo    PatientRecord    `json:"patientInfo"`
	KBResponse     *KnowledgeResult `json:"kbResponse,omitempty"`
}

// SynthesizeRequest returns the synthesizer input for this extraction.
func (r *ExtractResult) SynthesizeRequest() SynthesizeRequest {
	return SynthesizeRequest{
		PipelineRequest: r.PipelineRequest,
		PatientInfo:     r.PatientInfo,
		KBResponse:      r.KBResponse,
	}
}

// SynthesizeRequest is the synthesizer stage input.
type SynthesizeRequest struct {
	PipelineRequest
	PatientInfo PatientRecord    `json:"patientInfo,omitempty"`
	KBResponse  *KnowledgeResult `json:"kbResponse,omitempty"`
}

// SynthesizeResult is the synthesizer stage output.
type SynthesizeResult struct {
	PipelineRequest
	FinalAnswer string `json:"finalAnswer"`
}

// ErrorRecord is what a stage returns instead of its output when it fails.
type ErrorRecord struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}
