package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/request"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/coursefind/internal/logger"
	healthuc "github.com/kailas-cloud/coursefind/internal/usecase/health"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 100
	maxBodyBytes        = 1 << 20
)

// Searcher answers validated search requests.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Suggester completes partial words.
type Suggester interface {
	Suggest(partial string, limit int) []string
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API over chi.
type Server struct {
	search        Searcher
	suggest       Suggester
	health        *healthuc.Service
	suggestLimit  int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. suggestLimit <= 0 uses the default.
func NewServer(
	search Searcher,
	suggest Suggester,
	health *healthuc.Service,
	suggestLimit int,
	logger *zap.Logger,
) *Server {
	if suggestLimit <= 0 {
		suggestLimit = defaultSuggestLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:       search,
		suggest:      suggest,
		health:       health,
		suggestLimit: min(suggestLimit, maxSuggestLimit),
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chirouter.Router) {
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/search", s.Search)
		r.Get("/suggest", s.Suggest)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := searchRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToDTO(&results[i])
	}

	writeJSON(w, http.StatusOK, SearchResultListResponse{
		Items: items,
		Limit: searchReq.Limit(),
		Total: len(items),
	})
}

// Suggest handles GET /api/v1/suggest?q=<partial>&limit=<n>.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	limit := s.suggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				"limit must be a non-negative integer")
			return
		}
		limit = min(n, maxSuggestLimit)
	}

	writeJSON(w, http.StatusOK, SuggestResponse{
		Items: s.suggest.Suggest(r.URL.Query().Get("q"), limit),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		CacheDriver: report.CacheDriver,
		Courses:     report.Courses,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func searchRequestFromDTO(req SearchRequest) (request.Request, error) {
	spec, err := filterFromDTO(req.Filter)
	if err != nil {
		return request.Request{}, err
	}
	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}
	sr, err := request.New(req.Query, spec, limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("search request: %w", err)
	}
	return sr, nil
}

func errInvalidPrice(p string) error {
	return fmt.Errorf("%w: price must be one of all, free, paid, got %q", domain.ErrInvalidQuery, p)
}

func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logpkg.FromContextOr(r.Context(), s.logger).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrEmbedding,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
