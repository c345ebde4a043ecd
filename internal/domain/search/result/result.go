package result

import "github.com/kailas-cloud/coursefind/internal/domain"

// Result is a single ranked course. Course points into the engine's catalog and
// must be treated as read-only.
type Result struct {
	// Score is the cosine relevance of the course to the query.
	Score float64
	// RankScore is the blended relevance/rating/richness score results are ordered by.
	RankScore float64
	// Index is the course position in the catalog.
	Index    int
	Course   *domain.Course
	Keywords []string
	// Cluster is nil when clustering was skipped.
	Cluster *int
}

// New creates a result for the catalog entry at index.
func New(score float64, index int, course *domain.Course) Result {
	return Result{Score: score, RankScore: score, Index: index, Course: course}
}

// WithCluster returns a copy labelled with cluster id.
func (r Result) WithCluster(id int) Result {
	r.Cluster = &id
	return r
}

// HasCluster reports whether a cluster label is set.
func (r *Result) HasCluster() bool { return r.Cluster != nil }
