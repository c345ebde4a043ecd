package lexical

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// DefaultHashingDimensions is the vector width of the hashing embedder.
const DefaultHashingDimensions = 512

// HashingEmbedder is a deterministic local embedder: stop-word-filtered unigrams and
// adjacent bigrams are hashed into a fixed number of signed buckets and the result
// is L2-normalized. Text without tokens embeds to the zero vector.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a hashing embedder. dims <= 0 selects DefaultHashingDimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Model describes the vector space.
func (e *HashingEmbedder) Model() domain.Model {
	return domain.Model{Provider: "hashing", Name: "fnv1a-bow", Dimensions: e.dims}
}

// Embed implements domain.Embedder.
func (e *HashingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: e.vector(text)}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *HashingEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// HealthCheck always succeeds; the embedder has no remote dependency.
func (e *HashingEmbedder) HealthCheck(context.Context) error { return nil }

func (e *HashingEmbedder) vector(text string) []float32 {
	acc := make([]float64, e.dims)
	toks := Tokenize(text)
	for i, tok := range toks {
		e.add(acc, tok, 1)
		if i > 0 {
			e.add(acc, toks[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	vec := make([]float32, e.dims)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, x := range acc {
		vec[i] = float32(x / norm)
	}
	return vec
}

func (e *HashingEmbedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(e.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	acc[bucket] += weight
}
