// Package app assembles the search engine from configuration. It is the
// composition root shared by the CLI and the embeddable library API.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/catalog"
	"github.com/kailas-cloud/coursefind/internal/config"
	"github.com/kailas-cloud/coursefind/internal/db"
	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/lexical"
	"github.com/kailas-cloud/coursefind/internal/metrics"
	"github.com/kailas-cloud/coursefind/internal/repository/embcache"
	healthuc "github.com/kailas-cloud/coursefind/internal/usecase/health"
	searchuc "github.com/kailas-cloud/coursefind/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/coursefind/internal/usecase/suggest"
)

// Options adjust how Build wires the engine.
type Options struct {
	// Catalog replaces loading from cfg.Catalog.Path.
	Catalog domain.Catalog
	// Embedder replaces the configured provider. Model must then describe it.
	Embedder domain.Embedder
	Model    domain.Model
	// Recompute drops a persisted matrix before loading.
	Recompute bool
}

// App is a ready-to-query engine. The catalog, matrix and vectorizer are
// immutable once Build returns.
type App struct {
	Config  config.Config
	Catalog domain.Catalog
	Matrix  domain.Matrix
	Model   domain.Model
	Search  *searchuc.Service
	Suggest *suggestuc.Service
	Health  *healthuc.Service

	// Cache is the persisted-matrix cache.
	Cache *embcache.MatrixCache

	store     db.Store
	embedders *Embedders
	logger    *zap.Logger
}

// Build loads the catalog, prepares the embedding matrix and wires the services.
// It returns only once the matrix is ready; a catalog embedding failure is fatal.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	cat := opts.Catalog
	if cat == nil {
		var err error
		cat, err = catalog.NewLoader(logger).Load(ctx, cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
	}

	emb, err := NewEmbedders(cfg.Embedding, opts.Embedder, opts.Model, logger)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(ctx, cfg.Cache, logger)
	if err != nil {
		emb.Close()
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Catalog:   cat,
		Model:     emb.Model,
		store:     store,
		embedders: emb,
		logger:    logger,
	}

	a.Cache = embcache.New(emb.Document, emb.Model.ID(), store, cfg.Cache.KeyPrefix, metrics.EmbeddingCacheTotal, logger)

	if opts.Recompute {
		if err := a.Cache.Invalidate(ctx, cat); err != nil {
			logger.Warn("Failed to drop cached matrix", zap.Error(err))
		}
	}

	start := time.Now()
	a.Matrix, err = a.Cache.LoadOrCompute(ctx, cat)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("prepare embedding matrix: %w", err)
	}
	logger.Info("Embedding matrix ready",
		zap.Int("rows", a.Matrix.Rows()),
		zap.Int("dims", a.Matrix.Dims()),
		zap.String("model", emb.Model.ID()),
		zap.Duration("duration", time.Since(start)),
	)

	texts := make([]string, len(cat))
	for i := range cat {
		texts[i] = cat[i].LexicalText()
	}

	a.Search, err = searchuc.New(cat, a.Matrix, lexical.Fit(texts), emb.Query, searchuc.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		Clusters:     cfg.Search.Clusters,
		Keywords:     cfg.Search.KeywordCount(),
		ClusterSeed:  cfg.Search.ClusterSeed,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create search service: %w", err)
	}
	a.Suggest = suggestuc.New(cat)

	a.Health = healthuc.New(healthuc.Options{
		Cache:       store,
		CacheDriver: cfg.Cache.Driver,
		Embedding:   emb.Health,
		Courses:     len(cat),
	})

	return a, nil
}

// Close releases the cache backend and the embedding worker pool.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.embedders != nil {
		a.embedders.Close()
	}
}
