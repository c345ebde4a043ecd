package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogLoad signals an unreadable or structurally invalid catalog source.
	ErrCatalogLoad = errors.New("catalog load failed")
	// ErrEmbedding signals an embedding provider failure.
	ErrEmbedding = errors.New("embedding failed")
	// ErrProviderRejected marks a provider response that retrying cannot fix
	// (bad credentials, unknown model, malformed input).
	ErrProviderRejected = errors.New("embedding request rejected")
	// ErrCacheMismatch signals a persisted matrix that does not belong to the catalog.
	// It is always recovered by recomputation.
	ErrCacheMismatch = errors.New("embedding cache mismatch")
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
)

// CatalogLoadError wraps ErrCatalogLoad with the offending source.
type CatalogLoadError struct {
	Source string
	Err    error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCatalogLoad.Error(), e.Source, e.Err)
}

func (e *CatalogLoadError) Unwrap() []error { return []error{ErrCatalogLoad, e.Err} }

// EmbeddingError wraps ErrEmbedding with the failed operation and attempts spent.
type EmbeddingError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s: %s after %d attempts: %v", ErrEmbedding.Error(), e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrEmbedding.Error(), e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() []error { return []error{ErrEmbedding, e.Err} }

// CacheMismatchError describes why a cached matrix was rejected.
type CacheMismatchError struct {
	Key    string
	Reason string
}

func (e *CacheMismatchError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrCacheMismatch.Error(), e.Key, e.Reason)
}

func (e *CacheMismatchError) Unwrap() error { return ErrCacheMismatch }

// NewCacheMismatch creates a cache mismatch error.
func NewCacheMismatch(key, format string, args ...any) error {
	return &CacheMismatchError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
