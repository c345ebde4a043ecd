package coursefind

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/coursefind/internal/catalog"
)

func sampleCatalog() Catalog {
	return Catalog{
		{Title: "Intro to Python for Beginners", URL: "u1", FullDescription: "Learn python basics",
			Difficulty: Beginner, IsFree: true, Rating: "4.5/5"},
		{Title: "Python Basics Bootcamp", URL: "u2", FullDescription: "Paid python basics",
			Difficulty: Beginner, Rating: "4.9/5"},
		{Title: "Advanced Python Patterns", URL: "u3", FullDescription: "Python basics revisited",
			Difficulty: Advanced, IsFree: true, Rating: "4.7/5"},
		{Title: "Cooking for Beginners", URL: "u4", FullDescription: "Knife skills",
			Difficulty: Beginner, IsFree: true, Rating: "4.0/5"},
		{Title: "Statistics Fundamentals", URL: "u5", FullDescription: "Probability",
			Difficulty: Intermediate, Rating: "4.2/5"},
	}
}

type constEmbedder struct{}

func (constEmbedder) Embed(context.Context, string) (EmbeddingResult, error) {
	return EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

func TestOpen_RequiresCatalog(t *testing.T) {
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected error without a catalog")
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), WithCatalog(sampleCatalog()), WithOpenAI("", "", "", 0))
	if err == nil {
		t.Fatal("expected error for openai without model")
	}
}

func TestEngine_Search(t *testing.T) {
	e, err := Open(context.Background(), WithCatalog(sampleCatalog()), WithClusters(3, 1))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	results, err := e.Search(context.Background(), "python basics",
		Filter{Difficulties: []Difficulty{Beginner}, FreeOnly: true}, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 || results[0].Course.Title != "Intro to Python for Beginners" {
		t.Fatalf("unexpected results %v", results)
	}
	for _, r := range results {
		if !r.Course.IsFree || r.Course.Difficulty != Beginner {
			t.Errorf("%q violates the filter", r.Course.Title)
		}
	}

	if _, err := e.Search(context.Background(), "", Filter{}, 0); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestEngine_Suggest(t *testing.T) {
	e, err := Open(context.Background(), WithCatalog(sampleCatalog()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	got := e.Suggest("Py", 5)
	if len(got) != 1 || got[0] != "python" {
		t.Errorf("unexpected suggestions %v", got)
	}
	if len(e.Suggest("py", 0)) != 0 {
		t.Error("limit 0 must return nothing")
	}
}

func TestOpen_CatalogFileWithFileCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.json")
	if err := catalog.Save(path, sampleCatalog()); err != nil {
		t.Fatal(err)
	}

	e, err := Open(context.Background(), WithCatalogFile(path), WithFileCache(filepath.Join(dir, "cache")),
		WithHashingEmbedder(128))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	if len(e.Catalog()) != 5 || e.Model().Dimensions != 128 {
		t.Errorf("unexpected engine state: %d courses, model %+v", len(e.Catalog()), e.Model())
	}
}

func TestOpen_CustomEmbedder(t *testing.T) {
	e, err := Open(context.Background(), WithCatalog(sampleCatalog()),
		WithEmbedder(constEmbedder{}, Model{Provider: "const", Name: "x", Dimensions: 2}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	if e.Model().Provider != "const" {
		t.Errorf("unexpected model %+v", e.Model())
	}
	results, err := e.Search(context.Background(), "anything", Filter{}, 2)
	if err != nil || len(results) != 2 {
		t.Fatalf("expected 2 results, got %v, %v", results, err)
	}
}

func TestOpen_MissingCatalogFile(t *testing.T) {
	_, err := Open(context.Background(), WithCatalogFile(filepath.Join(t.TempDir(), "nope.json")))
	if !errors.Is(err, ErrCatalogLoad) {
		t.Fatalf("expected ErrCatalogLoad, got %v", err)
	}
}
