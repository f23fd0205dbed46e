// Package openai implements [knowledge.Embedder] against the OpenAI
// embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/embeddings"

	// DefaultModel is the embeddings model used unless overridden.
	DefaultModel = "text-embedding-3-large"

	// Dimensions is the vector size [DefaultModel] produces.
	Dimensions = 3072
)

// Client calls the OpenAI embeddings endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithAPIKey sets the API key explicitly instead of reading
// OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithBaseURL points the client at a different endpoint, an Azure
// OpenAI deployment or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithModel overrides the embeddings model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// NewClient constructs an embeddings client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		model:   DefaultModel,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type embeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, span := tracer.Start(ctx, "embed text")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		err := fmt.Errorf("openai api key not found")
		span.RecordError(err)
		return nil, err
	}

	requestBody, err := json.Marshal(embeddingsRequest{Model: c.model, Input: text})
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(requestBody))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return nil, err
	}

	var response embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		err = fmt.Errorf("error decoding response body: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if len(response.Data) == 0 {
		err := fmt.Errorf("embeddings response contained no data")
		span.RecordError(err)
		return nil, err
	}

	return response.Data[0].Embedding, nil
}
