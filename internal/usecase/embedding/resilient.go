package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultMaxBatchSize   = 256
)

// Config controls timeouts, retries and batch fan-out.
type Config struct {
	// Timeout bounds a single provider call.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries     int
	RetryBaseDelay time.Duration
	// BatchSize caps the number of texts per provider call.
	BatchSize int
	// Workers is the number of chunks embedded concurrently. 1 disables the pool.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultMaxBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// ResilientEmbedder wraps a provider with per-call timeouts, retries with
// exponential backoff and chunked batch embedding. Chunks run on an ants pool;
// results keep input order. Failures surface as *domain.EmbeddingError.
// Transport metrics are recorded by the provider itself.
type ResilientEmbedder struct {
	inner  domain.Embedder
	model  domain.Model
	cfg    Config
	pool   *ants.Pool
	logger *zap.Logger
}

// NewResilientEmbedder creates the wrapper. Call Close to release the worker pool.
func NewResilientEmbedder(inner domain.Embedder, model domain.Model, cfg Config, logger *zap.Logger) (*ResilientEmbedder, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &ResilientEmbedder{inner: inner, model: model, cfg: cfg, logger: logger}
	if cfg.Workers > 1 {
		pool, err := ants.NewPool(cfg.Workers)
		if err != nil {
			return nil, fmt.Errorf("create embedding pool: %w", err)
		}
		e.pool = pool
	}
	return e, nil
}

// Model returns the identity of the wrapped provider.
func (e *ResilientEmbedder) Model() domain.Model { return e.model }

// Close releases the worker pool.
func (e *ResilientEmbedder) Close() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Embed embeds one text with timeout and retries.
func (e *ResilientEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var result domain.EmbeddingResult
	attempts, err := e.retry(ctx, "embed", func(ctx context.Context) error {
		var err error
		result, err = e.inner.Embed(ctx, text)
		return err
	})
	if err != nil {
		return domain.EmbeddingResult{}, &domain.EmbeddingError{Op: "embed", Attempts: attempts, Err: err}
	}
	return result, nil
}

// BatchEmbed embeds texts in chunks of at most BatchSize. The result has one
// row per input, in input order.
func (e *ResilientEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	chunks := splitChunks(len(texts), e.cfg.BatchSize)
	results := make([]domain.BatchEmbeddingResult, len(chunks))

	var err error
	if e.pool == nil || len(chunks) == 1 {
		err = e.embedSequential(ctx, texts, chunks, results)
	} else {
		err = e.embedPooled(ctx, texts, chunks, results)
	}
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for _, r := range results {
		out.Embeddings = append(out.Embeddings, r.Embeddings...)
		out.PromptTokens += r.PromptTokens
		out.TotalTokens += r.TotalTokens
	}

	e.logger.Debug("Batch embedding completed",
		zap.String("model", e.model.ID()),
		zap.Int("batch_size", len(texts)),
		zap.Int("chunks", len(chunks)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck forwards to the provider when it supports health checks.
func (e *ResilientEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
		return hc.HealthCheck(ctx)
	}
	return nil
}

type chunk struct{ start, end int }

func splitChunks(n, size int) []chunk {
	chunks := make([]chunk, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		chunks = append(chunks, chunk{start: start, end: min(start+size, n)})
	}
	return chunks
}

func (e *ResilientEmbedder) embedSequential(
	ctx context.Context, texts []string, chunks []chunk, results []domain.BatchEmbeddingResult,
) error {
	for i, c := range chunks {
		res, err := e.embedChunk(ctx, texts[c.start:c.end], c.start)
		if err != nil {
			return err
		}
		results[i] = res
	}
	return nil
}

func (e *ResilientEmbedder) embedPooled(
	ctx context.Context, texts []string, chunks []chunk, results []domain.BatchEmbeddingResult,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, c := range chunks {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			res, err := e.embedChunk(ctx, texts[c.start:c.end], c.start)
			if err != nil {
				fail(err)
				return
			}
			results[i] = res
		})
		if err != nil {
			wg.Done()
			fail(&domain.EmbeddingError{Op: "batch embed", Err: fmt.Errorf("submit chunk: %w", err)})
			break
		}
	}
	wg.Wait()
	return firstErr
}

func (e *ResilientEmbedder) embedChunk(ctx context.Context, texts []string, offset int) (domain.BatchEmbeddingResult, error) {
	var res domain.BatchEmbeddingResult
	attempts, err := e.retry(ctx, "batch embed", func(ctx context.Context) error {
		var err error
		res, err = domain.BatchEmbed(ctx, e.inner, texts)
		if err == nil && len(res.Embeddings) != len(texts) {
			err = fmt.Errorf("provider returned %d vectors for %d texts", len(res.Embeddings), len(texts))
		}
		return err
	})
	if err != nil {
		e.logger.Error("Batch embedding request failed",
			zap.String("model", e.model.ID()),
			zap.Int("chunk_offset", offset),
			zap.Int("chunk_size", len(texts)),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, &domain.EmbeddingError{Op: "batch embed", Attempts: attempts, Err: err}
	}
	return res, nil
}

func (e *ResilientEmbedder) retry(ctx context.Context, op string, fn func(ctx context.Context) error) (int, error) {
	return retryWithBackoff(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
		return fn(ctx)
	}, e.cfg.MaxRetries+1, e.cfg.RetryBaseDelay, func(attempt int, delay time.Duration, err error) {
		e.logger.Warn("Embedding attempt failed, retrying",
			zap.String("op", op),
			zap.String("model", e.model.ID()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
	})
}
