package domain

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// recordingEmbedder returns vec for every text and records what it was asked to embed.
type recordingEmbedder struct {
	vec    []float32
	tokens int
	err    error
	single []string
}

func (r *recordingEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	r.single = append(r.single, text)
	if r.err != nil {
		return EmbeddingResult{}, r.err
	}
	return EmbeddingResult{Embedding: r.vec, PromptTokens: r.tokens, TotalTokens: r.tokens}, nil
}

// recordingBatcher adds a native batch call on top of recordingEmbedder.
type recordingBatcher struct {
	recordingEmbedder
	batches [][]string
	healthy error
}

func (r *recordingBatcher) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	r.batches = append(r.batches, texts)
	if r.err != nil {
		return BatchEmbeddingResult{}, r.err
	}
	rows := make([][]float32, len(texts))
	for i := range rows {
		rows[i] = r.vec
	}
	return BatchEmbeddingResult{Embeddings: rows, TotalTokens: r.tokens * len(texts)}, nil
}

func (r *recordingBatcher) HealthCheck(context.Context) error { return r.healthy }

func TestBatchEmbed_Dispatch(t *testing.T) {
	texts := []string{"Intro to Python", "Baking Bread"}

	t.Run("native batch", func(t *testing.T) {
		inner := &recordingBatcher{recordingEmbedder: recordingEmbedder{vec: []float32{1}}}
		res, err := BatchEmbed(context.Background(), inner, texts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(inner.batches) != 1 || len(inner.single) != 0 {
			t.Errorf("expected one batch call and no single calls, got %d/%d", len(inner.batches), len(inner.single))
		}
		if len(res.Embeddings) != len(texts) {
			t.Errorf("expected %d rows, got %d", len(texts), len(res.Embeddings))
		}
	})

	t.Run("fallback keeps order and sums tokens", func(t *testing.T) {
		inner := &recordingEmbedder{vec: []float32{0.5, 0.5}, tokens: 4}
		res, err := BatchEmbed(context.Background(), inner, texts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(inner.single, texts) {
			t.Errorf("expected texts embedded in order, got %v", inner.single)
		}
		if res.PromptTokens != 8 || res.TotalTokens != 8 {
			t.Errorf("expected 8 tokens, got %d/%d", res.PromptTokens, res.TotalTokens)
		}
	})

	t.Run("fallback on empty input", func(t *testing.T) {
		res, err := BatchFallback(context.Background(), &recordingEmbedder{}, nil)
		if err != nil || len(res.Embeddings) != 0 {
			t.Errorf("expected empty result, got %v, %v", res.Embeddings, err)
		}
	})
}

func TestBatchFallback_StopsAtFirstError(t *testing.T) {
	cause := errors.New("provider down")
	inner := &recordingEmbedder{err: cause}

	_, err := BatchFallback(context.Background(), inner, []string{"a", "b", "c"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if len(inner.single) != 1 {
		t.Errorf("expected to stop after the first failure, got %d calls", len(inner.single))
	}
}

func TestInstructionEmbedder(t *testing.T) {
	const instruction = "passage: "

	tests := []struct {
		name        string
		instruction string
		batch       bool
		want        []string
	}{
		{"single", instruction, false, []string{"passage: Go"}},
		{"empty instruction", "", false, []string{"Go"}},
		{"batch native", instruction, true, []string{"passage: Go", "passage: Rust"}},
		{"batch fallback", instruction, false, []string{"passage: Go", "passage: Rust"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := &recordingBatcher{recordingEmbedder: recordingEmbedder{vec: []float32{1}}}
			var e Embedder = &inner.recordingEmbedder
			if tc.batch {
				e = inner
			}
			emb := NewInstructionEmbedder(e, tc.instruction)

			var got []string
			if len(tc.want) == 1 {
				if _, err := emb.Embed(context.Background(), "Go"); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = inner.single
			} else {
				if _, err := emb.BatchEmbed(context.Background(), []string{"Go", "Rust"}); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = inner.single
				if tc.batch {
					got = inner.batches[0]
				}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("inner saw %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInstructionEmbedder_WrapsErrors(t *testing.T) {
	cause := &EmbeddingError{Op: "embed", Attempts: 2, Err: errors.New("timeout")}
	inner := &recordingBatcher{recordingEmbedder: recordingEmbedder{err: cause}}
	emb := NewInstructionEmbedder(inner, "q: ")

	if _, err := emb.Embed(context.Background(), "x"); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed: expected ErrEmbedding, got %v", err)
	}
	if _, err := emb.BatchEmbed(context.Background(), []string{"x"}); !errors.Is(err, ErrEmbedding) {
		t.Errorf("BatchEmbed: expected ErrEmbedding, got %v", err)
	}
}

func TestInstructionEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("unreachable")

	checked := NewInstructionEmbedder(&recordingBatcher{healthy: down}, "")
	if err := checked.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}

	unchecked := NewInstructionEmbedder(&recordingEmbedder{}, "")
	if err := unchecked.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check must report healthy, got %v", err)
	}
}

func TestModel_ID(t *testing.T) {
	base := Model{Provider: "openai", Name: "text-embedding-3-small", Dimensions: 512}

	variants := map[string]Model{
		"provider":    {Provider: "ollama", Name: base.Name, Dimensions: base.Dimensions},
		"name":        {Provider: base.Provider, Name: "text-embedding-3-large", Dimensions: base.Dimensions},
		"dimensions":  {Provider: base.Provider, Name: base.Name, Dimensions: 1536},
		"instruction": {Provider: base.Provider, Name: base.Name, Dimensions: base.Dimensions, Instruction: "passage: "},
	}
	for field, m := range variants {
		if m.ID() == base.ID() {
			t.Errorf("changing %s must change the model identity", field)
		}
	}
	if base.ID() != (Model{Provider: "openai", Name: "text-embedding-3-small", Dimensions: 512}).ID() {
		t.Error("model identity must be stable")
	}
}

func TestIsZeroVector(t *testing.T) {
	tests := []struct {
		name string
		v    []float32
		want bool
	}{
		{"nil", nil, true},
		{"zeros", []float32{0, 0, 0}, true},
		{"non-zero", []float32{0, 0.1, 0}, false},
		{"negative", []float32{-1}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsZeroVector(tc.v); got != tc.want {
				t.Errorf("IsZeroVector(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}
