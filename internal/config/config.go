package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
)

// Cache drivers.
const (
	CacheFile   = "file"
	CacheBadger = "badger"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds the coursefind configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig locates the course catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // hashing, openai, ollama (default: hashing)
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	MaxRetries          *int   `yaml:"max_retries"` // nil: default 3, 0: no retries
	RetryBaseDelayMs    int    `yaml:"retry_base_delay_ms"`
	BatchSize           int    `yaml:"batch_size"`
	Workers             int    `yaml:"workers"`
}

const (
	defaultMaxRetries = 3
	defaultKeywords   = 5
)

// Int returns a pointer to n, for optional settings where zero is meaningful.
func Int(n int) *int { return &n }

// RetryBudget returns max_retries, or the default when unset.
func (e EmbeddingConfig) RetryBudget() int {
	if e.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *e.MaxRetries
}

// CacheConfig selects the embedding matrix cache backend.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // file, badger, redis, none (default: file)
	Dir              string   `yaml:"dir"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TTLHours         int      `yaml:"ttl_hours"` // redis only, 0 = no expiry
}

// SearchConfig tunes the result pipeline.
type SearchConfig struct {
	DefaultLimit int    `yaml:"default_limit"`
	MaxLimit     int    `yaml:"max_limit"`
	Clusters     int    `yaml:"clusters"`
	Keywords     *int   `yaml:"keywords"` // nil: default 5, 0: no keywords
	ClusterSeed  uint64 `yaml:"cluster_seed"`
	SuggestLimit int    `yaml:"suggest_limit"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = ProviderHashing
	}
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 30
	}
	if e.MaxRetries == nil {
		e.MaxRetries = Int(defaultMaxRetries)
	}
	if e.RetryBaseDelayMs <= 0 {
		e.RetryBaseDelayMs = 500
	}
	if e.BatchSize <= 0 {
		e.BatchSize = 256
	}
	if e.Workers <= 0 {
		e.Workers = 1
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".coursefind-cache"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "coursefind:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = max(100, c.Search.DefaultLimit)
	}
	if c.Search.Clusters == 0 {
		c.Search.Clusters = 3
	}
	if c.Search.Keywords == nil {
		c.Search.Keywords = Int(defaultKeywords)
	}
	if c.Search.SuggestLimit <= 0 {
		c.Search.SuggestLimit = 10
	}
}

// KeywordCount returns keywords, or the default when unset.
func (s SearchConfig) KeywordCount() int {
	if s.Keywords == nil {
		return defaultKeywords
	}
	return *s.Keywords
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}

	switch c.Embedding.Provider {
	case ProviderHashing:
	case ProviderOpenAI, ProviderOllama:
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf(
			"embedding.provider must be %q, %q or %q, got %q",
			ProviderHashing, ProviderOpenAI, ProviderOllama, c.Embedding.Provider,
		)
	}
	if c.Embedding.RetryBudget() < 0 {
		return fmt.Errorf("embedding.max_retries must not be negative, got %d", c.Embedding.RetryBudget())
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}

	switch c.Cache.Driver {
	case CacheFile, CacheBadger, CacheNone:
	case CacheRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be one of file, badger, redis, none, got %q", c.Cache.Driver)
	}
	if c.Cache.TTLHours < 0 {
		return fmt.Errorf("cache.ttl_hours must not be negative, got %d", c.Cache.TTLHours)
	}

	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit (%d) must not be below search.default_limit (%d)",
			c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.KeywordCount() < 0 {
		return fmt.Errorf("search.keywords must not be negative, got %d", c.Search.KeywordCount())
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
