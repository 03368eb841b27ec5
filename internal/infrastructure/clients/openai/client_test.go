package openai

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.OpenAIConfig{
		APIKey:       "test-key",
		Model:        "gpt-4o-mini",
		BaseURL:      server.URL + "/",
		RateLimitRPM: -1,
	})
	require.NoError(t, err)
	return client
}

func writeOutput(w http.ResponseWriter, text string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"output": []map[string]interface{}{
			{"content": []map[string]string{{"type": "output_text", "text": text}}},
		},
	})
}

func TestClient_Complete(t *testing.T) {
	var got responseRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeOutput(w, "dynamo")
	})

	text, err := client.Complete(context.Background(), providers.CompletionRequest{
		Prompt:      "Classify",
		MaxTokens:   20,
		Temperature: 0,
		TopP:        1,
	})
	require.NoError(t, err)

	assert.Equal(t, "dynamo", text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "Classify", got.Input)
	assert.Equal(t, 20, got.MaxOutputTokens)
	assert.Equal(t, 1.0, got.TopP)
}

func TestClient_Complete_ModelOverride(t *testing.T) {
	var got responseRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeOutput(w, "```json\n{\"guideline\":\"x\"}\n```")
	})

	text, err := client.Complete(context.Background(), providers.CompletionRequest{Prompt: "p", Model: "gpt-4.1"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1", got.Model)
	assert.Equal(t, `{"guideline":"x"}`, text)
}

func TestClient_Complete_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), providers.CompletionRequest{Prompt: "p"})
	assert.ErrorIs(t, err, providers.ErrCompletionUnauthorized)
}

func TestClient_Complete_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), providers.CompletionRequest{Prompt: "p"})
	assert.ErrorContains(t, err, "status 503")
}

func TestClient_Complete_MissingOutput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[{"content":[{"type":"refusal","text":"no"}]}]}`))
	})

	_, err := client.Complete(context.Background(), providers.CompletionRequest{Prompt: "p"})
	assert.ErrorContains(t, err, "missing output text")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)
}

func TestTokenBucket_WaitHonoursContext(t *testing.T) {
	bucket := newTokenBucketWithRate(1, 1)
	require.NoError(t, bucket.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bucket.Wait(ctx), context.Canceled)
}
