package search

import (
	"context"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/lexical"
)

// Embedder vectorizes query text into the catalog's embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Vectorizer provides TF-IDF features for clustering and keyword extraction.
type Vectorizer interface {
	Transform(text string) lexical.Vector
	Keywords(text string, n int) []string
}
