package chi

import (
	"strings"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/filter"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorResponseCodeBadRequest             ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed       ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized           ErrorResponseCode = "unauthorized"
	ErrorResponseCodeEmbeddingProviderError ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeInternalError          ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// Price filter values.
const (
	PriceAll  = "all"
	PriceFree = "free"
	PricePaid = "paid"
)

// SearchFilter is the structured filter of a search request.
type SearchFilter struct {
	Difficulty []string `json:"difficulty,omitempty"`
	// IsFree true keeps free courses, false keeps paid ones.
	IsFree *bool `json:"is_free,omitempty"`
	// Price is all, free or paid. Ignored when empty.
	Price            string   `json:"price,omitempty"`
	MinRating        *float64 `json:"min_rating,omitempty"`
	MaxDurationHours *float64 `json:"max_duration_hours,omitempty"`
	Topics           []string `json:"topics,omitempty"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query  string        `json:"query"`
	Filter *SearchFilter `json:"filter,omitempty"`
	Limit  *int          `json:"limit,omitempty"`
}

// SearchResultItem is one ranked course.
type SearchResultItem struct {
	Index           int      `json:"index"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	FullDescription string   `json:"full_description"`
	KeyTakeaways    []string `json:"key_takeaways"`
	Difficulty      string   `json:"difficulty"`
	IsFree          bool     `json:"is_free"`
	NumLessons      *int     `json:"num_lessons"`
	EstimatedTime   string   `json:"estimated_time"`
	Rating          string   `json:"rating"`
	Score           float64  `json:"score"`
	RankScore       float64  `json:"rank_score"`
	Cluster         *int     `json:"cluster,omitempty"`
	Keywords        []string `json:"keywords"`
}

// SearchResultListResponse is the body of a successful search.
type SearchResultListResponse struct {
	Items []SearchResultItem `json:"items"`
	Limit int                `json:"limit"`
	Total int                `json:"total"`
}

// SuggestResponse is the body of GET /api/v1/suggest.
type SuggestResponse struct {
	Items []string `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CacheDriver string            `json:"cache_driver"`
	Courses     int               `json:"courses"`
}

func filterFromDTO(f *SearchFilter) (filter.Spec, error) {
	if f == nil {
		return filter.Spec{}, nil
	}
	spec := filter.Spec{
		MinRating:        f.MinRating,
		MaxDurationHours: f.MaxDurationHours,
		Topics:           f.Topics,
	}
	for _, d := range f.Difficulty {
		spec.Difficulties = append(spec.Difficulties, difficultyFromDTO(d))
	}

	switch strings.ToLower(f.Price) {
	case "", PriceAll:
	case PriceFree:
		spec.FreeOnly = true
	case PricePaid:
		spec.PaidOnly = true
	default:
		return filter.Spec{}, errInvalidPrice(f.Price)
	}
	if f.IsFree != nil {
		if *f.IsFree {
			spec.FreeOnly = true
		} else {
			spec.PaidOnly = true
		}
	}
	return spec, nil
}

// difficultyFromDTO accepts any casing of a known level. Unknown labels pass
// through verbatim so that validation rejects them.
func difficultyFromDTO(s string) domain.Difficulty {
	if d := domain.ParseDifficulty(s); d != domain.DifficultyUnspecified {
		return d
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "not specified":
		return domain.DifficultyUnspecified
	}
	return domain.Difficulty(s)
}

func searchResultToDTO(r *result.Result) SearchResultItem {
	c := r.Course
	item := SearchResultItem{
		Index:           r.Index,
		Title:           c.Title,
		URL:             c.URL,
		FullDescription: c.FullDescription,
		KeyTakeaways:    nonNil(c.KeyTakeaways),
		Difficulty:      c.Difficulty.String(),
		IsFree:          c.IsFree,
		EstimatedTime:   c.EstimatedTime,
		Rating:          c.Rating,
		Score:           r.Score,
		RankScore:       r.RankScore,
		Cluster:         r.Cluster,
		Keywords:        nonNil(r.Keywords),
	}
	if c.NumLessons.Known {
		n := c.NumLessons.N
		item.NumLessons = &n
	}
	return item
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
