package lexical

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Intro to Python: the BASICS of NumPy & pandas, v2 a b")
	want := []string{"intro", "python", "basics", "numpy", "pandas", "v2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
	if len(Tokenize("")) != 0 {
		t.Error("empty text must have no tokens")
	}
	if !IsStopWord("the") || IsStopWord("python") {
		t.Error("unexpected stop word classification")
	}
}

func testCorpus() []string {
	return []string{
		"Python for beginners python basics",
		"Machine learning with python",
		"Deep learning and neural networks",
	}
}

func TestFit_Vocabulary(t *testing.T) {
	v := Fit(testCorpus())
	// beginners basics python machine learning deep neural networks
	if v.Size() != 8 {
		t.Fatalf("expected 8 terms, got %d", v.Size())
	}
	for i := 1; i < v.Size(); i++ {
		if v.Term(i-1) >= v.Term(i) {
			t.Fatalf("vocabulary must be sorted: %q >= %q", v.Term(i-1), v.Term(i))
		}
	}
}

func TestTransform_Normalized(t *testing.T) {
	v := Fit(testCorpus())
	vec := v.Transform("python python learning unknownword")
	if vec.Len() != 2 {
		t.Fatalf("expected 2 known terms, got %d", vec.Len())
	}
	var norm float64
	for _, x := range vec.Values {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("expected unit norm, got %v", norm)
	}
	for i := 1; i < vec.Len(); i++ {
		if vec.Indices[i-1] >= vec.Indices[i] {
			t.Error("indices must ascend")
		}
	}
	if v.Transform("zzz qqq").Len() != 0 {
		t.Error("out-of-vocabulary text must yield an empty vector")
	}
}

func TestKeywords(t *testing.T) {
	v := Fit(testCorpus())

	got := v.Keywords("neural networks neural python", 2)
	if len(got) != 2 || got[0] != "neural" {
		t.Fatalf("expected neural first, got %v", got)
	}
	// "networks" is as rare as "neural" but appears once; "python" is common.
	if got[1] != "networks" {
		t.Errorf("expected networks second, got %v", got)
	}

	if kw := v.Keywords("", 5); len(kw) != 0 {
		t.Errorf("empty text must yield no keywords, got %v", kw)
	}
	if kw := v.Keywords("python", 0); len(kw) != 0 {
		t.Errorf("n=0 must yield no keywords, got %v", kw)
	}
	if kw := v.Keywords("python learning", 10); len(kw) != 2 {
		t.Errorf("expected at most the available terms, got %v", kw)
	}
}

func TestKeywords_TiesAlphabetical(t *testing.T) {
	v := Fit([]string{"alpha beta", "gamma"})
	got := v.Keywords("beta alpha", 2)
	if !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Errorf("expected alphabetical tie-break, got %v", got)
	}
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(64)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "python basics")
	b, _ := e.Embed(ctx, "python basics")
	if !reflect.DeepEqual(a.Embedding, b.Embedding) {
		t.Fatal("same text must embed identically")
	}
	if len(a.Embedding) != 64 {
		t.Fatalf("expected 64 dims, got %d", len(a.Embedding))
	}

	var norm float64
	for _, x := range a.Embedding {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit norm, got %v", norm)
	}
}

func TestHashingEmbedder_EmptyIsZero(t *testing.T) {
	e := NewHashingEmbedder(0)
	res, err := e.Embed(context.Background(), "  the of  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != DefaultHashingDimensions {
		t.Fatalf("expected default dims, got %d", len(res.Embedding))
	}
	for _, x := range res.Embedding {
		if x != 0 {
			t.Fatal("stop-word-only text must embed to the zero vector")
		}
	}
}

func TestHashingEmbedder_BatchMatchesSingle(t *testing.T) {
	e := NewHashingEmbedder(32)
	ctx := context.Background()
	texts := []string{"go concurrency", "python", ""}

	batch, err := e.BatchEmbed(ctx, texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Embeddings) != len(texts) {
		t.Fatalf("expected %d rows, got %d", len(texts), len(batch.Embeddings))
	}
	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		if !reflect.DeepEqual(single.Embedding, batch.Embeddings[i]) {
			t.Errorf("row %d differs from single embed", i)
		}
	}
}

func TestHashingEmbedder_Model(t *testing.T) {
	m := NewHashingEmbedder(128).Model()
	if m.Provider != "hashing" || m.Dimensions != 128 {
		t.Errorf("unexpected model %+v", m)
	}
}
