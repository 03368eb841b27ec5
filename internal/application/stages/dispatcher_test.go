package stages

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medibot/internal/application/services"
	"github.com/zatekoja/medibot/internal/domain/entities"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
)

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, req entities.PipelineRequest) (*entities.ClassifyResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*entities.ClassifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, req entities.ExtractRequest) (*entities.ExtractResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*entities.ExtractResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type panickingSynthesizer struct{}

func (panickingSynthesizer) Synthesize(ctx context.Context, req entities.SynthesizeRequest) (*entities.SynthesizeResult, error) {
	panic("nil context")
}

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, req entities.PipelineRequest) (*services.PipelineResult, error) {
	return &services.PipelineResult{RunID: "run-1"}, nil
}

func TestDispatcher_Classify(t *testing.T) {
	classifier := new(mockClassifier)
	req := entities.PipelineRequest{PatientID: "P1", Query: "What is my blood type?"}
	want := &entities.ClassifyResult{PipelineRequest: req, Classification: entities.ClassificationPatientData}
	classifier.On("Classify", mock.Anything, req).Return(want, nil)

	d := NewDispatcher(classifier, new(mockExtractor), panickingSynthesizer{}, nil)
	out, err := d.Invoke(context.Background(), StageClassify, []byte(`{"patientId":"P1","query":"What is my blood type?"}`))

	require.NoError(t, err)
	assert.Equal(t, want, out)
	classifier.AssertExpectations(t)
}

func TestDispatcher_ExtractIgnoresSuppliedRole(t *testing.T) {
	extractor := new(mockExtractor)
	extractor.On("Extract", mock.Anything, mock.MatchedBy(func(req entities.ExtractRequest) bool {
		return req.DoctorID == "" && req.Role() == entities.RolePatient && req.Classification == entities.ClassificationGeneralKnowledge
	})).Return(&entities.ExtractResult{}, nil)

	d := NewDispatcher(new(mockClassifier), extractor, panickingSynthesizer{}, nil)
	_, err := d.Invoke(context.Background(), StageExtract,
		[]byte(`{"patientId":"P1","query":"sepsis protocol","classification":"kb","callerRole":"doctor"}`))

	require.NoError(t, err)
	extractor.AssertExpectations(t)
}

func TestDispatcher_Errors(t *testing.T) {
	classifier := new(mockClassifier)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewDependencyError("query classification failed", errors.New("timeout")))
	d := NewDispatcher(classifier, new(mockExtractor), panickingSynthesizer{}, nil)

	tests := []struct {
		name       string
		stage      string
		payload    string
		wantStatus int
		wantError  string
	}{
		{"empty body", StageClassify, "", http.StatusBadRequest, "Missing patientId or query"},
		{"malformed json", StageClassify, "{", http.StatusBadRequest, "invalid JSON payload"},
		{"dependency failure", StageClassify, `{"patientId":"P1","query":"q"}`, http.StatusInternalServerError, "query classification failed: timeout"},
		{"panic", StageSynthesize, `{"patientId":"P1","query":"q"}`, http.StatusInternalServerError, "synthesize stage failed: nil context"},
		{"unknown stage", "triage", `{}`, http.StatusNotFound, `unknown stage "triage"`},
		{"pipeline not registered", StagePipeline, `{}`, http.StatusNotFound, "unknown stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.Invoke(context.Background(), tt.stage, []byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, out)

			rec := ErrorRecord(err)
			assert.Equal(t, tt.wantStatus, rec.StatusCode)
			assert.Contains(t, rec.Error, tt.wantError)
		})
	}
}

func TestDispatcher_Stages(t *testing.T) {
	d := NewDispatcher(new(mockClassifier), new(mockExtractor), panickingSynthesizer{}, stubRunner{})
	assert.Equal(t, []string{StageClassify, StageExtract, StagePipeline, StageSynthesize}, d.Stages())

	out, err := d.Invoke(context.Background(), StagePipeline, []byte(`{"patientId":"P1","query":"q"}`))
	require.NoError(t, err)
	assert.Equal(t, "run-1", out.(*services.PipelineResult).RunID)
}
