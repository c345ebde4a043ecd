package embcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/coursefind/internal/db"
	"github.com/kailas-cloud/coursefind/internal/domain"
)

// store is the consumer interface for the matrix cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Cache outcomes, used as the "result" metric label.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultMismatch = "mismatch"
)

// MatrixCache persists the catalog embedding matrix keyed by catalog fingerprint.
// A nil store disables persistence; every load then recomputes.
type MatrixCache struct {
	embedder   domain.Embedder
	modelID    string
	store      store
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	group      singleflight.Group
}

// New creates a matrix cache.
// cacheTotal is a counter vec with label "result" (hit/miss/mismatch), passed explicitly.
func New(
	embedder domain.Embedder,
	modelID string,
	s store,
	prefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *MatrixCache {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatrixCache{
		embedder:   embedder,
		modelID:    modelID,
		store:      s,
		prefix:     prefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Key returns the store key for cat.
func (c *MatrixCache) Key(cat domain.Catalog) string {
	return c.prefix + "matrix:" + cat.Fingerprint(c.modelID)
}

// LoadOrCompute returns the embedding matrix of cat, one row per record in
// catalog order. A valid persisted matrix is returned without calling the
// provider; otherwise the matrix is computed, persisted and returned. Concurrent
// callers for the same catalog share one computation.
func (c *MatrixCache) LoadOrCompute(ctx context.Context, cat domain.Catalog) (domain.Matrix, error) {
	fingerprint := cat.Fingerprint(c.modelID)
	key := c.prefix + "matrix:" + fingerprint

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.loadOrCompute(ctx, cat, fingerprint, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Shared matrix computation", zap.String("key", key))
	}
	return v.(domain.Matrix), nil
}

// Invalidate drops the persisted matrix of cat, forcing the next load to recompute.
func (c *MatrixCache) Invalidate(ctx context.Context, cat domain.Catalog) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Del(ctx, c.Key(cat)); err != nil {
		return fmt.Errorf("invalidate matrix: %w", err)
	}
	return nil
}

func (c *MatrixCache) loadOrCompute(ctx context.Context, cat domain.Catalog, fingerprint, key string) (domain.Matrix, error) {
	if len(cat) == 0 {
		return domain.Matrix{}, nil
	}

	if m, err := c.load(ctx, cat, fingerprint, key); err == nil {
		c.inc(ResultHit)
		c.logger.Info("Embedding matrix loaded from cache",
			zap.String("key", key), zap.Int("rows", m.Rows()), zap.Int("dims", m.Dims()))
		return m, nil
	} else if errors.Is(err, domain.ErrCacheMismatch) {
		c.inc(ResultMismatch)
		c.logger.Warn("Discarding cached embedding matrix", zap.Error(err))
	} else {
		c.inc(ResultMiss)
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cached embedding matrix", zap.String("key", key), zap.Error(err))
		}
	}

	m, err := c.compute(ctx, cat)
	if err != nil {
		return nil, err
	}
	c.persist(ctx, fingerprint, key, m)
	return m, nil
}

func (c *MatrixCache) load(ctx context.Context, cat domain.Catalog, fingerprint, key string) (domain.Matrix, error) {
	if c.store == nil {
		return nil, db.ErrKeyNotFound
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	storedFP, m, err := decodeMatrix(data)
	if err != nil {
		return nil, domain.NewCacheMismatch(key, "%v", err)
	}
	if storedFP != fingerprint {
		return nil, domain.NewCacheMismatch(key, "fingerprint %.12s does not match catalog %.12s", storedFP, fingerprint)
	}
	if m.Rows() != len(cat) {
		return nil, domain.NewCacheMismatch(key, "matrix has %d rows, catalog has %d records", m.Rows(), len(cat))
	}
	return m, nil
}

func (c *MatrixCache) compute(ctx context.Context, cat domain.Catalog) (domain.Matrix, error) {
	c.logger.Info("Computing embedding matrix", zap.Int("records", len(cat)), zap.String("model", c.modelID))

	res, err := domain.BatchEmbed(ctx, c.embedder, cat.EmbeddingTexts())
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}
	if len(res.Embeddings) != len(cat) {
		return nil, &domain.EmbeddingError{
			Op:  "embed catalog",
			Err: fmt.Errorf("provider returned %d vectors for %d records", len(res.Embeddings), len(cat)),
		}
	}

	m := domain.Matrix(res.Embeddings)
	if m.Dims() == 0 {
		return nil, &domain.EmbeddingError{Op: "embed catalog", Err: errors.New("provider returned zero-width vectors")}
	}
	for i, row := range m {
		if len(row) != m.Dims() {
			return nil, &domain.EmbeddingError{
				Op:  "embed catalog",
				Err: fmt.Errorf("vector %d has %d dims, want %d", i, len(row), m.Dims()),
			}
		}
	}
	c.logger.Info("Embedding matrix computed",
		zap.Int("rows", m.Rows()), zap.Int("dims", m.Dims()), zap.Int("total_tokens", res.TotalTokens))
	return m, nil
}

// persist failures are logged only: the computed matrix is still valid.
func (c *MatrixCache) persist(ctx context.Context, fingerprint, key string, m domain.Matrix) {
	if c.store == nil {
		return
	}
	data, err := encodeMatrix(fingerprint, m)
	if err != nil {
		c.logger.Warn("Failed to encode embedding matrix", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("Failed to cache embedding matrix", zap.String("key", key), zap.Error(err))
	}
}

func (c *MatrixCache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
