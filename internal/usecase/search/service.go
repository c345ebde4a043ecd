package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/request"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
	"github.com/kailas-cloud/coursefind/internal/metrics"
)

// Config tunes the result pipeline.
type Config struct {
	// DefaultLimit caps results when the request sets no limit.
	DefaultLimit int
	// MaxLimit caps any requested limit.
	MaxLimit int
	// Clusters is k for k-means; <= 1 disables clustering.
	Clusters int
	// Keywords is the number of keywords attached to each result.
	Keywords    int
	ClusterSeed uint64
}

// Service answers search queries over an immutable catalog and its embedding
// matrix. It is safe for concurrent use.
type Service struct {
	catalog    domain.Catalog
	matrix     domain.Matrix
	vectorizer Vectorizer
	embed      Embedder
	cfg        Config
	logger     *zap.Logger
}

// New creates a search service. matrix must hold one row per catalog record.
func New(
	catalog domain.Catalog, matrix domain.Matrix,
	vectorizer Vectorizer, embed Embedder,
	cfg Config, logger *zap.Logger,
) (*Service, error) {
	if matrix.Rows() != len(catalog) {
		return nil, fmt.Errorf("matrix has %d rows for %d courses", matrix.Rows(), len(catalog))
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = max(cfg.DefaultLimit, 100)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:    catalog,
		matrix:     matrix,
		vectorizer: vectorizer,
		embed:      embed,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Search embeds the query, scores the whole catalog, filters, ranks, caps,
// clusters and annotates the results. A query embedding failure degrades
// to zero relevance instead of failing; cancellation of ctx is returned.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	start := time.Now()

	query, degraded, err := s.embedQuery(ctx, req.Query())
	if err != nil {
		metrics.ObserveSearch(metrics.StatusError, time.Since(start), 0)
		return nil, err
	}

	candidates := Retrieve(query, s.matrix)
	results := make([]result.Result, len(candidates))
	for i, c := range candidates {
		results[i] = result.New(c.Score, c.Index, &s.catalog[c.Index])
	}

	results = Apply(results, req.Filter())
	results = Rank(results)
	if limit := s.limit(req.Limit()); len(results) > limit {
		results = results[:limit]
	}
	results = Cluster(results, s.cfg.Clusters, s.vectorizer, s.cfg.ClusterSeed)
	for i := range results {
		results[i].Keywords = s.vectorizer.Keywords(results[i].Course.FullDescription, s.cfg.Keywords)
	}

	status := metrics.StatusOK
	if degraded {
		status = metrics.StatusDegraded
	}
	metrics.ObserveSearch(status, time.Since(start), len(results))

	s.logger.Debug("Search completed",
		zap.Int("results", len(results)),
		zap.Bool("degraded", degraded),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, bool, error) {
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, fmt.Errorf("embed query: %w", ctxErr)
		}
		s.logger.Warn("Query embedding failed, ranking without relevance", zap.Error(err))
		return nil, true, nil
	}
	if domain.IsZeroVector(res.Embedding) {
		s.logger.Warn("Query embedding is a zero vector", zap.String("query", text))
		return res.Embedding, true, nil
	}
	return res.Embedding, false, nil
}

func (s *Service) limit(requested int) int {
	if requested <= 0 {
		return s.cfg.DefaultLimit
	}
	return min(requested, s.cfg.MaxLimit)
}

// Len returns the catalog size.
func (s *Service) Len() int { return len(s.catalog) }
