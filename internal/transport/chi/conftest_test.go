package chi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/request"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/coursefind/internal/usecase/health"
)

// --- Mocks ---

type mockSearcher struct {
	results []result.Result
	err     error
	got     *request.Request
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) ([]result.Result, error) {
	m.got = req
	return m.results, m.err
}

type mockSuggester struct {
	partial string
	limit   int
}

func (m *mockSuggester) Suggest(partial string, limit int) []string {
	m.partial, m.limit = partial, limit
	out := []string{}
	for _, w := range []string{"python", "pytorch"} {
		if len(out) < limit && strings.HasPrefix(w, partial) {
			out = append(out, w)
		}
	}
	return out
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(context.Context) error { return m.err }

// --- Fixtures ---

var testCourse = domain.Course{
	Title:           "Intro to Python for Beginners",
	URL:             "https://example.com/py",
	FullDescription: "Learn python",
	Difficulty:      domain.DifficultyBeginner,
	IsFree:          true,
	NumLessons:      domain.Lessons(12),
	EstimatedTime:   "3 Hour",
	Rating:          "4.5/5",
}

type testEnv struct {
	search  *mockSearcher
	suggest *mockSuggester
	router  http.Handler
}

func newTestEnv(t *testing.T, health healthuc.Options) *testEnv {
	t.Helper()
	env := &testEnv{search: &mockSearcher{}, suggest: &mockSuggester{}}
	srv := NewServer(env.search, env.suggest, healthuc.New(health), 5, nil)
	r := chirouter.NewRouter()
	srv.Mount(r)
	env.router = r
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

var errBoom = errors.New("dial tcp 10.0.0.7:6379: connection refused")
