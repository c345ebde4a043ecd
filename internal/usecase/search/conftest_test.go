package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/lexical"
)

// fiveCourses is the end-to-end fixture: one free Beginner Python course plus
// records that are lexically close but paid or at another level.
func fiveCourses() domain.Catalog {
	return domain.Catalog{
		{
			Title:           "Intro to Python for Beginners",
			URL:             "https://example.com/python-beginners",
			FullDescription: "Learn python basics: variables, loops and functions",
			KeyTakeaways:    []string{"syntax", "loops", "functions"},
			Difficulty:      domain.DifficultyBeginner,
			IsFree:          true,
			EstimatedTime:   "3 Hour",
			Rating:          "4.5/5",
		},
		{
			Title:           "Python Basics Masterclass",
			URL:             "https://example.com/python-masterclass",
			FullDescription: "Python basics python basics for experienced developers",
			Difficulty:      domain.DifficultyAdvanced,
			IsFree:          true,
			EstimatedTime:   "10 Hour",
			Rating:          "4.8/5",
		},
		{
			Title:           "Python Basics Bootcamp",
			URL:             "https://example.com/python-bootcamp",
			FullDescription: "Paid python basics bootcamp",
			Difficulty:      domain.DifficultyBeginner,
			IsFree:          false,
			EstimatedTime:   "45 Mins",
			Rating:          "4.9/5",
		},
		{
			Title:           "Cooking for Beginners",
			URL:             "https://example.com/cooking",
			FullDescription: "Knife skills and simple recipes",
			Difficulty:      domain.DifficultyBeginner,
			IsFree:          true,
			EstimatedTime:   "2 Hour",
			Rating:          "4.0/5",
		},
		{
			Title:           "Statistics Fundamentals",
			URL:             "https://example.com/stats",
			FullDescription: "Probability, distributions and hypothesis testing",
			Difficulty:      domain.DifficultyIntermediate,
			IsFree:          false,
			EstimatedTime:   "6 Hour",
			Rating:          "4.2/5",
		},
	}
}

// embedCatalog builds the matrix the way the composition root does.
func embedCatalog(t *testing.T, e *lexical.HashingEmbedder, cat domain.Catalog) domain.Matrix {
	t.Helper()
	res, err := e.BatchEmbed(context.Background(), cat.EmbeddingTexts())
	if err != nil {
		t.Fatalf("embed catalog: %v", err)
	}
	return domain.Matrix(res.Embeddings)
}

func lexicalTexts(cat domain.Catalog) []string {
	out := make([]string, len(cat))
	for i := range cat {
		out[i] = cat[i].LexicalText()
	}
	return out
}

func newTestService(t *testing.T, cat domain.Catalog, embed Embedder, cfg Config) *Service {
	t.Helper()
	hashing := lexical.NewHashingEmbedder(lexical.DefaultHashingDimensions)
	if embed == nil {
		embed = hashing
	}
	svc, err := New(cat, embedCatalog(t, hashing, cat), lexical.Fit(lexicalTexts(cat)), embed, cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// failingEmbedder always fails, like an unreachable provider.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, &domain.EmbeddingError{Op: "embed", Attempts: 3, Err: errors.New("connection refused")}
}
