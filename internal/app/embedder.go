package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/config"
	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/lexical"
	ollamaEmb "github.com/kailas-cloud/coursefind/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/coursefind/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/coursefind/internal/usecase/embedding"
)

// Embedders is the single provider instance seen through its document and
// query decorators.
type Embedders struct {
	// Document embeds catalog records; Query embeds search queries.
	Document domain.Embedder
	Query    domain.Embedder
	// Health probes the underlying provider.
	Health domain.HealthChecker
	// Model identifies the document vector space, instruction included.
	Model     domain.Model
	resilient *embeddinguc.ResilientEmbedder
}

// Close releases the batch worker pool.
func (e *Embedders) Close() {
	if e.resilient != nil {
		e.resilient.Close()
	}
}

type modeler interface {
	Model() domain.Model
}

// NewEmbedders builds the provider chain: provider -> resilient -> instruction.
// A non-nil override replaces the configured provider.
func NewEmbedders(cfg config.EmbeddingConfig, override domain.Embedder, model domain.Model, logger *zap.Logger) (*Embedders, error) {
	inner := override
	if inner == nil {
		var err error
		inner, err = newProvider(cfg, logger)
		if err != nil {
			return nil, err
		}
		if m, ok := inner.(modeler); ok {
			model = m.Model()
		}
	}

	resilient, err := embeddinguc.NewResilientEmbedder(inner, model, embeddinguc.Config{
		Timeout:        time.Duration(cfg.TimeoutSec) * time.Second,
		MaxRetries:     cfg.RetryBudget(),
		RetryBaseDelay: time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		BatchSize:      cfg.BatchSize,
		Workers:        cfg.Workers,
	}, logger)
	if err != nil {
		return nil, err
	}

	e := &Embedders{
		Document:  resilient,
		Query:     resilient,
		Health:    resilient,
		Model:     model,
		resilient: resilient,
	}
	if cfg.DocumentInstruction != "" {
		e.Document = domain.NewInstructionEmbedder(resilient, cfg.DocumentInstruction)
		e.Model.Instruction = cfg.DocumentInstruction
	}
	if cfg.QueryInstruction != "" {
		e.Query = domain.NewInstructionEmbedder(resilient, cfg.QueryInstruction)
	}

	logger.Info("Embedder created",
		zap.String("provider", model.Provider),
		zap.String("model", model.Name),
		zap.Int("dimensions", model.Dimensions),
		zap.Int("workers", cfg.Workers),
	)
	return e, nil
}

func newProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderHashing:
		return lexical.NewHashingEmbedder(cfg.Dimensions), nil
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		}), nil
	case config.ProviderOllama:
		e, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
