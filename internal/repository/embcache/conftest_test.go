package embcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/db"
	"github.com/kailas-cloud/coursefind/internal/domain"
)

// mockEmbedder returns a deterministic vector per text and counts batch calls.
type mockEmbedder struct {
	batchErr   error
	zeroWidth  bool
	batchCalls atomic.Int32
	// gate, when set, blocks BatchEmbed until closed.
	gate chan struct{}
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), float32(text[0]), 0.5}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: vectorFor(text)}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if m.zeroWidth {
			embeddings[i] = []float32{}
			continue
		}
		embeddings[i] = vectorFor(text)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: len(texts)}, nil
}

// memStore implements the consumer interface for tests.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func testCatalog() domain.Catalog {
	return domain.Catalog{
		{Title: "Intro to Python", FullDescription: "Basics"},
		{Title: "Deep Learning", FullDescription: "Neural networks"},
		{Title: "SQL", FullDescription: "Queries"},
	}
}

func newTestCache(t *testing.T, inner *mockEmbedder, s store) (*MatrixCache, *prometheus.CounterVec) {
	t.Helper()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_embedding_cache_total",
	}, []string{"result"})
	return New(inner, "test/model/3", s, "", counter, zap.NewNop()), counter
}
