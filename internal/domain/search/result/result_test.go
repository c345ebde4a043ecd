package result

import (
	"testing"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

func TestNew(t *testing.T) {
	c := &domain.Course{Title: "Go"}
	r := New(0.42, 3, c)

	if r.Score != 0.42 || r.RankScore != 0.42 {
		t.Errorf("unexpected scores %v/%v", r.Score, r.RankScore)
	}
	if r.Index != 3 || r.Course != c {
		t.Errorf("unexpected reference %d/%p", r.Index, r.Course)
	}
	if r.HasCluster() {
		t.Error("new result must have no cluster")
	}
}

func TestWithCluster(t *testing.T) {
	r := New(0.1, 0, &domain.Course{})
	labelled := r.WithCluster(2)

	if !labelled.HasCluster() || *labelled.Cluster != 2 {
		t.Fatalf("expected cluster 2, got %v", labelled.Cluster)
	}
	if r.HasCluster() {
		t.Error("WithCluster must not modify the receiver")
	}
}
