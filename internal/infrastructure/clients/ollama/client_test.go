package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/pkg/config"
)

func TestClient_Complete(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": " both\n",
			"done":     true,
		})
	}))
	defer server.Close()

	client := NewClient(&config.OllamaConfig{URL: server.URL, Model: "llama3.2"})
	text, err := client.Complete(context.Background(), providers.CompletionRequest{
		Prompt:      "Classify",
		MaxTokens:   20,
		Temperature: 0,
		TopP:        1,
		Model:       "llama3.2:1b",
	})
	require.NoError(t, err)

	assert.Equal(t, "both", text)
	assert.Equal(t, "llama3.2:1b", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 20, got.Options.NumPredict)
	assert.Equal(t, 1.0, got.Options.TopP)
}

func TestClient_Complete_DefaultModel(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"response":"ok","done":true}`))
	}))
	defer server.Close()

	_, err := NewClient(&config.OllamaConfig{URL: server.URL}).Complete(context.Background(), providers.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", got.Model)
}

func TestClient_Complete_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(&config.OllamaConfig{URL: server.URL}).Complete(context.Background(), providers.CompletionRequest{Prompt: "p"})
	assert.ErrorContains(t, err, "status 404")
}
