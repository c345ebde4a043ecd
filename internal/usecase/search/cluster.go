package search

import (
	"math/rand/v2"
	"sort"

	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
	"github.com/kailas-cloud/coursefind/internal/lexical"
)

// MaxKMeansIterations bounds Lloyd iterations per clustering run.
const MaxKMeansIterations = 100

// Cluster labels results with k topical groups using k-means over TF-IDF
// vectors of title and description. With fewer than k results, or k <= 1,
// results are returned unlabelled. Labels are opaque ids in [0, k); the same
// results and seed always produce the same labels.
func Cluster(results []result.Result, k int, vz Vectorizer, seed uint64) []result.Result {
	if k <= 1 || len(results) < k {
		return results
	}
	labels := kmeans(featureMatrix(results, vz), k, seed, MaxKMeansIterations)
	for i := range results {
		results[i] = results[i].WithCluster(labels[i])
	}
	return results
}

// featureMatrix densifies the TF-IDF vectors of results over the union of
// their terms, which is far smaller than the catalog vocabulary.
func featureMatrix(results []result.Result, vz Vectorizer) [][]float64 {
	vecs := make([]lexical.Vector, len(results))
	columns := make(map[int]int)
	for i := range results {
		vecs[i] = vz.Transform(results[i].Course.LexicalText())
		for _, idx := range vecs[i].Indices {
			columns[idx] = 0
		}
	}

	terms := make([]int, 0, len(columns))
	for idx := range columns {
		terms = append(terms, idx)
	}
	sort.Ints(terms)
	for col, idx := range terms {
		columns[idx] = col
	}

	points := make([][]float64, len(results))
	for i, v := range vecs {
		p := make([]float64, len(terms))
		for j, idx := range v.Indices {
			p[columns[idx]] = v.Values[j]
		}
		points[i] = p
	}
	return points
}

// kmeans partitions points into k clusters with k-means++ seeding and Lloyd
// iterations. Requires len(points) >= k >= 1.
func kmeans(points [][]float64, k int, seed uint64, maxIter int) []int {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	centers := seedCenters(points, k, rng)

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best := nearest(p, centers)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCenters(points, labels, centers)
	}
	return labels
}

func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.IntN(len(points))]))

	dist := make([]float64, len(points))
	for len(centers) < k {
		var total float64
		for i, p := range points {
			d := sqDist(p, centers[0])
			for _, c := range centers[1:] {
				d = min(d, sqDist(p, c))
			}
			dist[i] = d
			total += d
		}

		pick := len(points) - 1
		if total == 0 {
			pick = rng.IntN(len(points))
		} else {
			target := rng.Float64() * total
			var acc float64
			for i, d := range dist {
				acc += d
				if acc > target {
					pick = i
					break
				}
			}
		}
		centers = append(centers, clone(points[pick]))
	}
	return centers
}

// nearest returns the closest center; ties go to the lower index.
func nearest(p []float64, centers [][]float64) int {
	best, bestDist := 0, sqDist(p, centers[0])
	for c := 1; c < len(centers); c++ {
		if d := sqDist(p, centers[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// updateCenters moves each center to the mean of its members. A center that
// lost all members stays where it was.
func updateCenters(points [][]float64, labels []int, centers [][]float64) {
	counts := make([]int, len(centers))
	sums := make([][]float64, len(centers))
	for c := range sums {
		sums[c] = make([]float64, len(centers[c]))
	}
	for i, p := range points {
		c := labels[i]
		counts[c]++
		for j, x := range p {
			sums[c][j] += x
		}
	}
	for c := range centers {
		if counts[c] == 0 {
			continue
		}
		for j := range centers[c] {
			centers[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
