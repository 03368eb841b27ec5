package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PATIENT_TABLE", "")
	t.Setenv("RECORD_CACHE_TTL", "")
	t.Setenv("LLM_BREAKER_FAILURES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, LLMProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "patient_records", cfg.Pipeline.PatientTable)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.RecordCacheTTL)
	assert.Equal(t, 3, cfg.Pipeline.GuidelineLimit)
	assert.False(t, cfg.Typesense.Enabled)
	assert.Equal(t, 5, cfg.LLM.BreakerFailures)
}

func TestLoad_PipelineOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("CLASSIFIER_MODEL", "llama3.2:1b")
	t.Setenv("SYNTHESIZER_MODEL", "llama3.1:8b")
	t.Setenv("PATIENT_TABLE", "Medai_patientinfo")
	t.Setenv("RECORD_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, LLMProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "http://ollama:11434", cfg.Ollama.URL)
	assert.Equal(t, "llama3.2:1b", cfg.Pipeline.ClassifierModel)
	assert.Equal(t, "", cfg.Pipeline.KnowledgeModel)
	assert.Equal(t, "llama3.1:8b", cfg.Pipeline.SynthesizerModel)
	assert.Equal(t, "Medai_patientinfo", cfg.Pipeline.PatientTable)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.RecordCacheTTL)
}

func TestLoad_MissingOpenAIKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := &Config{
		LLM:      LLMConfig{Provider: "bedrock"},
		Pipeline: PipelineConfig{PatientTable: "patient_records"},
	}
	assert.ErrorContains(t, cfg.Validate(), "unsupported LLM_PROVIDER")
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("ALLOWED_ORIGINS", "https://ward.example.org, ,https://icu.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://ward.example.org", "https://icu.example.org"}, cfg.Server.AllowedOrigins)
}

func TestLoadWithVault_Disabled(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "false")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := LoadWithVault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.OpenAI.APIKey)
}

func TestLoadWithVault_Incomplete(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "true")
	t.Setenv("VAULT_ADDR", "")

	_, err := LoadWithVault(context.Background())
	assert.ErrorContains(t, err, "failed to load vault secrets")
}
