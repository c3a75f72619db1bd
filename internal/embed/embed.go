// Package embed turns text into vectors through any server speaking the
// OpenAI /v1/embeddings format (sentence-transformers behind TEI, Ollama,
// vLLM, OpenAI itself) and compares them with cosine similarity.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/newslens/pkg/httpclient"
)

// DefaultModel matches the sentence-transformers model the relevance
// threshold was tuned against.
const DefaultModel = "paraphrase-MiniLM-L6-v2"

// Embedder converts text to a vector. Topic and article text must go
// through the same Embedder for their similarity to mean anything.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Config configures the HTTP embedding client.
type Config struct {
	// Endpoint is the server base URL, e.g. "http://localhost:8003".
	Endpoint string
	Model    string
	// APIKey is sent as a bearer token when set.
	APIKey  string
	Timeout time.Duration
	// MaxBodyBytes caps the response read. 0 means httpclient's default.
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Client implements Embedder over HTTP.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *httpclient.Client
	logger   *slog.Logger
}

// New creates a Client. An empty endpoint is an error: without a model
// every relevance score would collapse to zero.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("embedding endpoint is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	hc, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: -1,
		UserAgent:    "newslens",
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     hc,
		logger:   cfg.Logger,
	}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// Model returns the model name sent with each request.
func (c *Client) Model() string { return c.model }

// Embed returns the embedding for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one embedding per input, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	raw, err := c.http.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		snippet := raw[:min(len(raw), 512)]
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, strings.TrimSpace(string(snippet)))
	}

	var out embedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	vecs := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index >= 0 && d.Index < len(vecs) {
			vecs[d.Index] = d.Embedding
		}
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}

	c.logger.Debug("embedded texts", "count", len(texts), "model", c.model, "duration", time.Since(start))
	return vecs, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. Vectors of
// different length or with zero norm score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push parallel vectors a hair past 1
	return math.Max(-1, math.Min(1, sim))
}
