package embedding

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// scriptedEmbedder fails the first failures calls with err, then succeeds.
// Vectors encode the input text length so order can be checked.
type scriptedEmbedder struct {
	failures int32
	err      error
	calls    atomic.Int32
	// delay, when set, blocks each call until the context is done or the channel closes.
	delay chan struct{}

	mu        sync.Mutex
	batchLens []int
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (m *scriptedEmbedder) next(ctx context.Context) error {
	n := m.calls.Add(1)
	if m.delay != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.delay:
		}
	}
	if n <= m.failures {
		return m.err
	}
	return nil
}

func (m *scriptedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := m.next(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}, TotalTokens: 1}, nil
}

func (m *scriptedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		prev := m.maxFlight.Load()
		if cur <= prev || m.maxFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	m.mu.Lock()
	m.batchLens = append(m.batchLens, len(texts))
	m.mu.Unlock()

	if err := m.next(ctx); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text))}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

func (m *scriptedEmbedder) HealthCheck(context.Context) error { return nil }

// singleOnly has no native batch call.
type singleOnly struct{ calls atomic.Int32 }

func (s *singleOnly) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.calls.Add(1)
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}}, nil
}
