package coursefind

import (
	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/filter"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
)

// Course is a single catalog record.
type Course = domain.Course

// Catalog is the ordered course list.
type Catalog = domain.Catalog

// Difficulty is the declared level of a course.
type Difficulty = domain.Difficulty

// Difficulty levels.
const (
	Unspecified  = domain.DifficultyUnspecified
	Beginner     = domain.DifficultyBeginner
	Intermediate = domain.DifficultyIntermediate
	Advanced     = domain.DifficultyAdvanced
)

// Filter narrows search results. The zero value matches every course.
type Filter = filter.Spec

// Result is one ranked course. Result.Course points into the engine's catalog
// and must not be modified.
type Result = result.Result

// Embedder maps text to a vector. Implementations may also implement
// BatchEmbedder and HealthChecker.
type Embedder = domain.Embedder

// BatchEmbedder embeds many texts in one call.
type BatchEmbedder = domain.BatchEmbedder

// HealthChecker reports provider availability.
type HealthChecker = domain.HealthChecker

// EmbeddingResult carries one vector and its token usage.
type EmbeddingResult = domain.EmbeddingResult

// BatchEmbeddingResult carries the vectors of a batch.
type BatchEmbeddingResult = domain.BatchEmbeddingResult

// Model identifies the vector space of an Embedder. It keys the matrix cache.
type Model = domain.Model

// Errors returned by Open and Engine.Search. Match them with errors.Is.
var (
	ErrCatalogLoad  = domain.ErrCatalogLoad
	ErrEmbedding    = domain.ErrEmbedding
	ErrInvalidQuery = domain.ErrInvalidQuery
)
