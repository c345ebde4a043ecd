// Package ollama provides an embedding provider backed by a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/metrics"
)

// ProviderName labels metrics and model identity.
const ProviderName = "ollama"

// Config holds the Ollama provider settings. An empty BaseURL falls back to
// OLLAMA_HOST, then to the Ollama default.
type Config struct {
	BaseURL    string
	Model      string
	Dimensions int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Embedder calls the Ollama /api/embed endpoint.
type Embedder struct {
	client     *api.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}

	host := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("ollama: parse base url: %w", err)
		}
		host = u
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     api.NewClient(host, httpClient),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		logger:     logger,
	}, nil
}

// Model describes the vector space this embedder produces.
func (e *Embedder) Model() domain.Model {
	return domain.Model{Provider: ProviderName, Name: e.model, Dimensions: e.dimensions}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.embed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Ollama returns embeddings in input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	start := time.Now()

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: texts})

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, "api_error").Inc()
		return domain.BatchEmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Embeddings) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, "count_mismatch").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama returned %d embeddings for %d inputs: %w",
			len(resp.Embeddings), len(texts), domain.ErrEmbedding)
	}
	if e.dimensions > 0 {
		for i, v := range resp.Embeddings {
			if len(v) != e.dimensions {
				metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, "dimension_mismatch").Inc()
				return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama embedding %d has %d dims, want %d: %w: %w",
					i, len(v), e.dimensions, domain.ErrEmbedding, domain.ErrProviderRejected)
			}
		}
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderName, e.model).Observe(duration.Seconds())
	if resp.PromptEvalCount > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderName, e.model, "prompt").Add(float64(resp.PromptEvalCount))
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderName, e.model, "total").Add(float64(resp.PromptEvalCount))
	}

	e.logger.Debug("Embedding request completed",
		zap.String("provider", ProviderName),
		zap.Int("inputs", len(texts)),
		zap.Duration("duration", duration),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   resp.Embeddings,
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// HealthCheck pings the Ollama server.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}

// parseAPIError maps Ollama errors onto domain sentinels. A 404 means the model
// is not pulled, which retrying cannot fix.
func parseAPIError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		wrap := domain.ErrEmbedding
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
			statusErr.StatusCode != http.StatusRequestTimeout && statusErr.StatusCode != http.StatusTooManyRequests {
			wrap = fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrProviderRejected)
		}
		return fmt.Errorf("ollama API error %d: %s: %w", statusErr.StatusCode, statusErr.ErrorMessage, wrap)
	}
	return fmt.Errorf("ollama request failed: %w: %w", domain.ErrEmbedding, err)
}
