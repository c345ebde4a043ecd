package search

import (
	"sort"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/filter"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
)

// Blend weights of the final score.
const (
	RelevanceWeight = 0.6
	RatingWeight    = 0.3
	RichnessWeight  = 0.1
	// TakeawaySaturation is the takeaway count at which richness maxes out.
	TakeawaySaturation = 10
)

// Apply keeps the results whose course satisfies spec, preserving order.
func Apply(results []result.Result, spec filter.Spec) []result.Result {
	if spec.IsEmpty() {
		return results
	}
	out := make([]result.Result, 0, len(results))
	for _, r := range results {
		if spec.Match(r.Course) {
			out = append(out, r)
		}
	}
	return out
}

// FinalScore blends relevance with the course's rating and takeaway count.
func FinalScore(relevance float64, c *domain.Course) float64 {
	rating := filter.ParseRating(c.Rating) / 5
	richness := min(1, float64(len(c.KeyTakeaways))/TakeawaySaturation)
	return RelevanceWeight*relevance + RatingWeight*rating + RichnessWeight*richness
}

// Rank sets RankScore on every result and stable-sorts by it, highest first.
// Results with equal RankScore keep their incoming (relevance) order.
func Rank(results []result.Result) []result.Result {
	for i := range results {
		results[i].RankScore = FinalScore(results[i].Score, results[i].Course)
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].RankScore > results[b].RankScore
	})
	return results
}
