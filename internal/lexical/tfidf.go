package lexical

import (
	"math"
	"sort"
)

// Vector is a sparse L2-normalized TF-IDF vector with ascending term indices.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int { return len(v.Indices) }

// Vectorizer weights terms by smoothed TF-IDF over a fixed vocabulary.
// It is immutable after Fit and safe for concurrent use.
type Vectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// Fit builds the vocabulary and inverse document frequencies from docs.
// idf(t) = ln((1+n)/(1+df(t))) + 1, so terms present in every document keep weight.
func Fit(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Size returns the vocabulary size.
func (v *Vectorizer) Size() int { return len(v.terms) }

// Term returns the vocabulary term at index i.
func (v *Vectorizer) Term(i int) string { return v.terms[i] }

// Transform maps text onto the vocabulary. Out-of-vocabulary tokens are ignored;
// text with no known terms yields an empty vector.
func (v *Vectorizer) Transform(text string) Vector {
	tf := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if idx, ok := v.vocab[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return Vector{}
	}

	out := Vector{
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, 0, len(tf)),
	}
	for idx := range tf {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)

	var norm float64
	for _, idx := range out.Indices {
		w := tf[idx] * v.idf[idx]
		out.Values = append(out.Values, w)
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range out.Values {
		out.Values[i] /= norm
	}
	return out
}

// Keywords returns up to n terms of text with the highest TF-IDF weight,
// heaviest first; equal weights are ordered alphabetically.
func (v *Vectorizer) Keywords(text string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	vec := v.Transform(text)
	order := make([]int, vec.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		wa, wb := vec.Values[order[a]], vec.Values[order[b]]
		if wa != wb {
			return wa > wb
		}
		return v.terms[vec.Indices[order[a]]] < v.terms[vec.Indices[order[b]]]
	})
	if len(order) > n {
		order = order[:n]
	}
	out := make([]string, len(order))
	for i, o := range order {
		out[i] = v.terms[vec.Indices[o]]
	}
	return out
}
