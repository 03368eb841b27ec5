package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medibot/internal/domain/entities"
)

func newTestPipeline(llm *stubCompletion, store *stubStore) *Pipeline {
	return NewPipeline(
		NewClassifierService(llm, DefaultClassifierSettings),
		NewExtractorService(store, llm, testTable, DefaultKnowledgeSettings),
		NewSynthesizerService(llm, DefaultSynthesizerSettings),
	)
}

func TestPipeline_PatientAsksForOwnRecord(t *testing.T) {
	llm := medicalModel()
	p := newTestPipeline(llm, &stubStore{records: map[string]entities.PatientRecord{"P1": {"bloodType": "O+"}}})

	res, err := p.Run(context.Background(), entities.PipelineRequest{PatientID: "P1", Query: "What is my blood type?"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, entities.ClassificationPatientData, res.Classification.Classification)
	assert.Nil(t, res.Extraction.KBResponse)
	assert.Contains(t, res.Answer.FinalAnswer, "O+")
	assert.Equal(t, 2, llm.calls())
}

func TestPipeline_DoctorAsksForProtocol(t *testing.T) {
	llm := medicalModel()
	store := &stubStore{}
	p := newTestPipeline(llm, store)

	res, err := p.Run(context.Background(), entities.PipelineRequest{
		PatientID: "P1", Query: "What is the standard sepsis protocol?", DoctorID: "D9",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.ClassificationGeneralKnowledge, res.Classification.Classification)
	assert.Empty(t, store.lookups)
	assert.Nil(t, res.Extraction.PatientInfo)
	assert.Contains(t, res.Answer.FinalAnswer, "Surviving Sepsis Campaign")
	assert.Equal(t, 3, llm.calls())
}

func TestPipeline_PatientAsksForProtocolIsDenied(t *testing.T) {
	llm := medicalModel()
	p := newTestPipeline(llm, &stubStore{})

	res, err := p.Run(context.Background(), entities.PipelineRequest{PatientID: "P1", Query: "What is the standard sepsis protocol?"})
	require.NoError(t, err)

	assert.Equal(t, entities.KnowledgeDeniedMessage, res.Extraction.KBResponse.Message)
	assert.Equal(t, entities.KnowledgeDeniedMessage, res.Answer.FinalAnswer)
	assert.Equal(t, 2, llm.calls(), "no knowledge call for a patient")
}

func TestPipeline_UnknownPatient(t *testing.T) {
	llm := medicalModel()
	p := newTestPipeline(llm, &stubStore{})

	res, err := p.Run(context.Background(), entities.PipelineRequest{PatientID: "P404", Query: "What is my blood type?"})
	require.NoError(t, err)

	assert.True(t, res.Extraction.PatientInfo.IsNotFound())
	assert.Equal(t, InsufficientContextAnswer, res.Answer.FinalAnswer)
	assert.Equal(t, 1, llm.calls())
}

func TestPipeline_StageFailureEndsRun(t *testing.T) {
	cause := errors.New("store unavailable")
	p := newTestPipeline(medicalModel(), &stubStore{err: cause})

	res, err := p.Run(context.Background(), entities.PipelineRequest{PatientID: "P1", Query: "What is my blood type?"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, cause)
}
