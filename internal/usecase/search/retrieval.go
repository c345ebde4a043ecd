package search

import (
	"math"
	"sort"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// Candidate is a catalog position with its cosine relevance to the query.
type Candidate struct {
	Index int
	Score float64
}

// Retrieve scores every matrix row against query and returns all of them,
// most similar first; equal scores keep catalog order. A zero query, a zero
// row or a row of a different width scores 0.
func Retrieve(query []float32, m domain.Matrix) []Candidate {
	qNorm := norm(query)
	out := make([]Candidate, len(m))
	for i, row := range m {
		out[i] = Candidate{Index: i, Score: cosine(query, qNorm, row)}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}

func cosine(q []float32, qNorm float64, row []float32) float64 {
	if qNorm == 0 || len(row) != len(q) {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(row[i])
	}
	rNorm := norm(row)
	if rNorm == 0 {
		return 0
	}
	s := dot / (qNorm * rNorm)
	// Clamp rounding drift so scores stay within [-1, 1].
	return math.Max(-1, math.Min(1, s))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0
	}
	return math.Sqrt(sum)
}
