package coursefind

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/config"
)

// Option configures Open.
type Option func(*engineConfig)

type engineConfig struct {
	cfg      config.Config
	catalog  Catalog
	embedder Embedder
	model    Model
	logger   *zap.Logger
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		cfg: config.Config{
			Cache: config.CacheConfig{Driver: config.CacheNone},
		},
	}
}

// WithCatalogFile loads the catalog from a JSON file.
func WithCatalogFile(path string) Option {
	return func(c *engineConfig) {
		c.cfg.Catalog.Path = path
	}
}

// WithCatalog uses an in-memory catalog. The engine keeps a reference; do not
// modify it after Open.
func WithCatalog(cat Catalog) Option {
	return func(c *engineConfig) {
		c.catalog = cat
	}
}

// WithHashingEmbedder selects the local hashing embedder (the default).
// dims <= 0 keeps the default width.
func WithHashingEmbedder(dims int) Option {
	return func(c *engineConfig) {
		c.cfg.Embedding.Provider = config.ProviderHashing
		c.cfg.Embedding.Dimensions = dims
	}
}

// WithOpenAI selects an OpenAI-compatible embedding API. baseURL may be empty.
func WithOpenAI(apiKey, baseURL, model string, dims int) Option {
	return func(c *engineConfig) {
		c.cfg.Embedding.Provider = config.ProviderOpenAI
		c.cfg.Embedding.APIKey = apiKey
		c.cfg.Embedding.BaseURL = baseURL
		c.cfg.Embedding.Model = model
		c.cfg.Embedding.Dimensions = dims
	}
}

// WithOllama selects an Ollama server. An empty host falls back to OLLAMA_HOST.
func WithOllama(host, model string) Option {
	return func(c *engineConfig) {
		c.cfg.Embedding.Provider = config.ProviderOllama
		c.cfg.Embedding.BaseURL = host
		c.cfg.Embedding.Model = model
	}
}

// WithEmbedder injects a custom provider. model must identify its vector space:
// a different model never shares a cached matrix.
func WithEmbedder(e Embedder, model Model) Option {
	return func(c *engineConfig) {
		c.embedder = e
		c.model = model
	}
}

// WithInstructions sets the document and query prefixes for instruction-tuned models.
func WithInstructions(document, query string) Option {
	return func(c *engineConfig) {
		c.cfg.Embedding.DocumentInstruction = document
		c.cfg.Embedding.QueryInstruction = query
	}
}

// WithRetry tunes the per-attempt timeout (whole seconds) and retry budget of provider calls.
func WithRetry(timeout time.Duration, maxRetries int, baseDelay time.Duration) Option {
	return func(c *engineConfig) {
		c.cfg.Embedding.TimeoutSec = int(timeout / time.Second)
		c.cfg.Embedding.MaxRetries = config.Int(maxRetries)
		c.cfg.Embedding.RetryBaseDelayMs = int(baseDelay / time.Millisecond)
	}
}

// WithWorkers sets how many batch chunks are embedded concurrently.
func WithWorkers(n int) Option {
	return func(c *engineConfig) {
		c.cfg.Embedding.Workers = n
	}
}

// WithFileCache persists the embedding matrix as files under dir.
func WithFileCache(dir string) Option {
	return func(c *engineConfig) {
		c.cfg.Cache.Driver = config.CacheFile
		c.cfg.Cache.Dir = dir
	}
}

// WithBadgerCache persists the embedding matrix in a badger database under dir.
func WithBadgerCache(dir string) Option {
	return func(c *engineConfig) {
		c.cfg.Cache.Driver = config.CacheBadger
		c.cfg.Cache.Dir = dir
	}
}

// WithRedisCache persists the embedding matrix in Redis or Valkey.
func WithRedisCache(password string, addrs ...string) Option {
	return func(c *engineConfig) {
		c.cfg.Cache.Driver = config.CacheRedis
		c.cfg.Cache.Addrs = addrs
		c.cfg.Cache.Password = password
	}
}

// WithLimits sets the default and maximum number of results per search.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(c *engineConfig) {
		c.cfg.Search.DefaultLimit = defaultLimit
		c.cfg.Search.MaxLimit = maxLimit
	}
}

// WithClusters sets k for result clustering; k <= 1 disables it.
func WithClusters(k int, seed uint64) Option {
	return func(c *engineConfig) {
		if k <= 1 {
			k = 1
		}
		c.cfg.Search.Clusters = k
		c.cfg.Search.ClusterSeed = seed
	}
}

// WithKeywords sets the number of keywords attached to each result.
func WithKeywords(n int) Option {
	return func(c *engineConfig) {
		c.cfg.Search.Keywords = config.Int(n)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}
