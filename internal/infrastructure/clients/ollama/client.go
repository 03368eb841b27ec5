package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Client implements providers.CompletionProvider against a local Ollama server.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	requests   metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewClient creates a new Ollama client.
func NewClient(cfg *config.OllamaConfig) *Client {
	baseURL := "http://localhost:11434"
	model := "llama3.2"
	if cfg != nil {
		if cfg.URL != "" {
			baseURL = strings.TrimRight(cfg.URL, "/")
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
	}

	meter := otel.Meter("github.com/zatekoja/medibot/ollama")
	requests, _ := meter.Int64Counter("ai.ollama.request.count",
		metric.WithDescription("Number of Ollama requests"))
	duration, _ := meter.Float64Histogram("ai.ollama.request.duration",
		metric.WithDescription("Ollama request duration in milliseconds"),
		metric.WithUnit("ms"))

	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		requests: requests,
		duration: duration,
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete runs a non-streaming generation.
func (c *Client) Complete(ctx context.Context, in providers.CompletionRequest) (text string, err error) {
	model := c.model
	if in.Model != "" {
		model = in.Model
	}

	start := time.Now()
	defer func() {
		c.record(ctx, model, time.Since(start), err)
	}()

	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: in.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: in.Temperature,
			TopP:        in.TopP,
			NumPredict:  in.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}

func (c *Client) record(ctx context.Context, model string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("ai.provider", "ollama"),
		attribute.String("ai.model", model),
		attribute.Bool("error", err != nil),
	)
	if c.requests != nil {
		c.requests.Add(ctx, 1, attrs)
	}
	if c.duration != nil {
		c.duration.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}
