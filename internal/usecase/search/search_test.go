package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/filter"
	"github.com/kailas-cloud/coursefind/internal/domain/search/request"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
	"github.com/kailas-cloud/coursefind/internal/lexical"
)

// --- retrieval.go tests ---

func TestRetrieve_CoversCatalogSorted(t *testing.T) {
	m := domain.Matrix{{1, 0}, {0, 1}, {1, 1}, {-1, 0}}
	got := Retrieve([]float32{1, 0}, m)

	if len(got) != len(m) {
		t.Fatalf("expected %d candidates, got %d", len(m), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("candidates not sorted at %d: %v", i, got)
		}
	}
	if got[0].Index != 0 || got[0].Score != 1 {
		t.Errorf("expected exact match first, got %+v", got[0])
	}
	if got[len(got)-1].Index != 3 || got[len(got)-1].Score != -1 {
		t.Errorf("expected opposite vector last, got %+v", got[len(got)-1])
	}
}

func TestRetrieve_TiesAndDegenerateRows(t *testing.T) {
	m := domain.Matrix{{0, 0}, {1, 0, 0}, {0, 1}, {0, 0}}
	got := Retrieve([]float32{1, 0}, m)

	want := []int{0, 1, 2, 3}
	for i, c := range got {
		if c.Score != 0 {
			t.Errorf("candidate %d: expected score 0, got %v", c.Index, c.Score)
		}
		if c.Index != want[i] {
			t.Errorf("ties must keep catalog order, got %v", got)
			break
		}
	}
}

func TestRetrieve_ZeroQuery(t *testing.T) {
	for _, c := range Retrieve(nil, domain.Matrix{{1, 0}, {0, 1}}) {
		if c.Score != 0 {
			t.Fatalf("zero query must score 0, got %v", c.Score)
		}
	}
}

// --- rank.go tests ---

func resultsFor(cat domain.Catalog, scores ...float64) []result.Result {
	out := make([]result.Result, len(scores))
	for i, s := range scores {
		out[i] = result.New(s, i, &cat[i])
	}
	return out
}

func TestApply_OrderPreservingSubset(t *testing.T) {
	cat := fiveCourses()
	in := resultsFor(cat, 0.9, 0.8, 0.7, 0.6, 0.5)
	spec := filter.Spec{Difficulties: []domain.Difficulty{domain.DifficultyBeginner}, FreeOnly: true}

	out := Apply(in, spec)
	if len(out) > len(in) {
		t.Fatal("apply must not grow the result set")
	}
	prev := -1
	for _, r := range out {
		if !spec.Match(r.Course) {
			t.Errorf("result %d violates the filter", r.Index)
		}
		if r.Index <= prev {
			t.Errorf("apply must preserve order")
		}
		prev = r.Index
	}
	if len(out) != 2 || out[0].Index != 0 || out[1].Index != 3 {
		t.Errorf("unexpected survivors %v", out)
	}
}

func TestApply_EmptySpecKeepsAll(t *testing.T) {
	cat := fiveCourses()
	in := resultsFor(cat, 0.5, 0.4)
	if got := Apply(in, filter.Spec{}); len(got) != 2 {
		t.Errorf("empty spec must keep everything, got %d", len(got))
	}
}

func TestFinalScore_Monotone(t *testing.T) {
	base := domain.Course{Rating: "3/5", KeyTakeaways: []string{"a", "b"}}

	if FinalScore(0.5, &base) <= FinalScore(0.4, &base) {
		t.Error("final score must increase with relevance")
	}

	better := base
	better.Rating = "4/5"
	if FinalScore(0.5, &better) <= FinalScore(0.5, &base) {
		t.Error("final score must increase with rating")
	}

	richer := base
	richer.KeyTakeaways = []string{"a", "b", "c"}
	if FinalScore(0.5, &richer) <= FinalScore(0.5, &base) {
		t.Error("final score must increase with takeaways")
	}

	ten := domain.Course{KeyTakeaways: make([]string, 10)}
	twenty := domain.Course{KeyTakeaways: make([]string, 20)}
	if FinalScore(0, &ten) != FinalScore(0, &twenty) {
		t.Error("richness must saturate at 10 takeaways")
	}
}

func TestFinalScore_Value(t *testing.T) {
	c := domain.Course{Rating: "4.5/5", KeyTakeaways: make([]string, 5)}
	want := 0.6*0.8 + 0.3*0.9 + 0.1*0.5
	if got := FinalScore(0.8, &c); math.Abs(got-want) > 1e-12 {
		t.Errorf("FinalScore = %v, want %v", got, want)
	}
}

func TestRank_StableOnTies(t *testing.T) {
	cat := domain.Catalog{{Title: "a"}, {Title: "b"}, {Title: "c", Rating: "5/5"}}
	in := resultsFor(cat, 0.5, 0.5, 0.1)

	out := Rank(in)
	if out[0].Index != 2 {
		t.Errorf("highly rated course should overtake, got order %d,%d,%d", out[0].Index, out[1].Index, out[2].Index)
	}
	if out[1].Index != 0 || out[2].Index != 1 {
		t.Errorf("equal final scores must keep relevance order")
	}
	for _, r := range out {
		if r.RankScore != FinalScore(r.Score, r.Course) {
			t.Errorf("RankScore not set for %d", r.Index)
		}
	}
}

// --- cluster.go tests ---

func TestCluster_FewerResultsThanK(t *testing.T) {
	cat := fiveCourses()
	vz := lexical.Fit(lexicalTexts(cat))
	in := resultsFor(cat, 0.9, 0.8)

	for _, r := range Cluster(in, 3, vz, 1) {
		if r.HasCluster() {
			t.Fatalf("k=3 on 2 results must leave labels unset")
		}
	}
}

func TestCluster_KOneDisables(t *testing.T) {
	cat := fiveCourses()
	for _, r := range Cluster(resultsFor(cat, 1, 1, 1), 1, lexical.Fit(lexicalTexts(cat)), 1) {
		if r.HasCluster() {
			t.Fatal("k=1 must leave labels unset")
		}
	}
}

func TestCluster_SeparatesTopics(t *testing.T) {
	cat := domain.Catalog{
		{Title: "Python programming", URL: "a"},
		{Title: "Italian cooking", URL: "b"},
		{Title: "Python programming", URL: "c"},
		{Title: "Italian cooking", URL: "d"},
	}
	vz := lexical.Fit(lexicalTexts(cat))

	for seed := uint64(0); seed < 5; seed++ {
		out := Cluster(resultsFor(cat, 0.4, 0.3, 0.2, 0.1), 2, vz, seed)
		for _, r := range out {
			if !r.HasCluster() || *r.Cluster < 0 || *r.Cluster >= 2 {
				t.Fatalf("seed %d: invalid label on %d", seed, r.Index)
			}
		}
		if *out[0].Cluster != *out[2].Cluster || *out[1].Cluster != *out[3].Cluster {
			t.Errorf("seed %d: same-topic courses split", seed)
		}
		if *out[0].Cluster == *out[1].Cluster {
			t.Errorf("seed %d: different topics merged", seed)
		}
	}
}

func TestCluster_Deterministic(t *testing.T) {
	cat := fiveCourses()
	vz := lexical.Fit(lexicalTexts(cat))

	a := Cluster(resultsFor(cat, 0.5, 0.4, 0.3, 0.2, 0.1), 3, vz, 42)
	b := Cluster(resultsFor(cat, 0.5, 0.4, 0.3, 0.2, 0.1), 3, vz, 42)
	for i := range a {
		if *a[i].Cluster != *b[i].Cluster {
			t.Fatalf("same seed must give same labels")
		}
	}
}

func TestKMeans_IdenticalPoints(t *testing.T) {
	points := [][]float64{{1, 0}, {1, 0}, {1, 0}}
	labels := kmeans(points, 2, 7, MaxKMeansIterations)
	for _, l := range labels {
		if l < 0 || l >= 2 {
			t.Fatalf("label out of range: %v", labels)
		}
	}
}

// --- service.go tests ---

func TestService_EndToEnd(t *testing.T) {
	cat := fiveCourses()
	svc := newTestService(t, cat, nil, Config{DefaultLimit: 10, Clusters: 3, Keywords: 5})

	req, err := request.New("python basics", filter.Spec{
		Difficulties: []domain.Difficulty{domain.DifficultyBeginner},
		FreeOnly:     true,
	}, 0)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	results, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 || results[0].Index != 0 {
		t.Fatalf("expected the beginner python course first, got %v", results)
	}
	for _, r := range results {
		if !r.Course.IsFree || r.Course.Difficulty != domain.DifficultyBeginner {
			t.Errorf("result %q violates the filter", r.Course.Title)
		}
		if r.Index == 1 || r.Index == 2 {
			t.Errorf("lexically closer but filtered course %q returned", r.Course.Title)
		}
		if len(r.Keywords) == 0 || len(r.Keywords) > 5 {
			t.Errorf("unexpected keywords %v", r.Keywords)
		}
		if r.HasCluster() {
			t.Error("two results with k=3 must stay unclustered")
		}
	}
	if results[0].Course != &cat[0] {
		t.Error("results must reference catalog records")
	}
}

func TestService_NoMatches(t *testing.T) {
	svc := newTestService(t, fiveCourses(), nil, Config{})
	rating := 5.0
	req, _ := request.New("python", filter.Spec{MinRating: &rating}, 0)

	results, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("no matches is not an error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", results)
	}
}

func TestService_Limit(t *testing.T) {
	svc := newTestService(t, fiveCourses(), nil, Config{DefaultLimit: 2, MaxLimit: 3})

	tests := []struct {
		limit, want int
	}{
		{0, 2},
		{1, 1},
		{4, 3},
	}
	for _, tc := range tests {
		req, _ := request.New("python", filter.Spec{}, tc.limit)
		results, err := svc.Search(context.Background(), &req)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(results) != tc.want {
			t.Errorf("limit %d: got %d results, want %d", tc.limit, len(results), tc.want)
		}
	}
}

func TestService_DegradesOnEmbeddingFailure(t *testing.T) {
	svc := newTestService(t, fiveCourses(), failingEmbedder{}, Config{DefaultLimit: 5})
	req, _ := request.New("python", filter.Spec{}, 0)

	results, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("query embedding failure must degrade, got %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected all 5 courses, got %d", len(results))
	}
	for i, r := range results {
		if r.Score != 0 {
			t.Errorf("degraded relevance must be 0, got %v", r.Score)
		}
		if i > 0 && r.RankScore > results[i-1].RankScore {
			t.Error("degraded results must still be ranked")
		}
	}
}

func TestService_CanceledContext(t *testing.T) {
	svc := newTestService(t, fiveCourses(), failingEmbedder{}, Config{})
	req, _ := request.New("python", filter.Spec{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Search(ctx, &req); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestService_ClustersLargeResultSets(t *testing.T) {
	svc := newTestService(t, fiveCourses(), nil, Config{DefaultLimit: 5, Clusters: 2, ClusterSeed: 3})
	req, _ := request.New("courses", filter.Spec{}, 0)

	results, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, r := range results {
		if !r.HasCluster() {
			t.Fatalf("expected cluster labels on %d results with k=2", len(results))
		}
	}
}

func TestNew_RowMismatch(t *testing.T) {
	cat := fiveCourses()
	_, err := New(cat, domain.Matrix{{1}}, lexical.Fit(nil), failingEmbedder{}, Config{}, nil)
	if err == nil {
		t.Fatal("expected error for mismatched matrix")
	}
}
