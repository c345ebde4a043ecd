// Package coursefind is a semantic search engine over a course catalog.
//
// Open loads the catalog, embeds it once (or reuses a persisted matrix with
// the same fingerprint) and returns an Engine that answers queries with
// cosine relevance, structured filters, blended ranking, clustering and
// per-result keywords.
package coursefind

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/app"
	"github.com/kailas-cloud/coursefind/internal/domain/search/request"
)

// Engine answers search and autocomplete requests. It is safe for concurrent use.
type Engine struct {
	app *app.App
}

// Open builds an engine. It blocks until the embedding matrix is ready.
func Open(ctx context.Context, opts ...Option) (*Engine, error) {
	ec := defaultEngineConfig()
	for _, o := range opts {
		o(ec)
	}
	if ec.catalog == nil && ec.cfg.Catalog.Path == "" {
		return nil, errors.New("coursefind: catalog required (use WithCatalogFile or WithCatalog)")
	}
	if ec.catalog != nil && ec.cfg.Catalog.Path == "" {
		ec.cfg.Catalog.Path = "memory"
	}

	ec.cfg.ApplyDefaults()
	if err := ec.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("coursefind: %w", err)
	}

	logger := ec.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a, err := app.Build(ctx, ec.cfg, logger, app.Options{
		Catalog:  ec.catalog,
		Embedder: ec.embedder,
		Model:    ec.model,
	})
	if err != nil {
		return nil, fmt.Errorf("coursefind: %w", err)
	}
	return &Engine{app: a}, nil
}

// Search returns courses ranked for query that satisfy f. limit 0 uses the
// default limit. No match is an empty slice, not an error. Invalid input
// returns an error matching ErrInvalidQuery.
func (e *Engine) Search(ctx context.Context, query string, f Filter, limit int) ([]Result, error) {
	req, err := request.New(query, f, limit)
	if err != nil {
		return nil, err
	}
	return e.app.Search.Search(ctx, &req)
}

// Suggest completes partial against title words, at most limit of them.
// limit <= 0 returns an empty slice.
func (e *Engine) Suggest(partial string, limit int) []string {
	return e.app.Suggest.Suggest(partial, limit)
}

// Catalog returns the loaded catalog. Do not modify it.
func (e *Engine) Catalog() Catalog { return e.app.Catalog }

// Model returns the identity of the document vector space.
func (e *Engine) Model() Model { return e.app.Model }

// Close releases the cache backend and worker pool.
func (e *Engine) Close() {
	if e.app != nil {
		e.app.Close()
	}
}
