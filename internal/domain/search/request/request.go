package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/filter"
)

// MaxQueryLength is the maximum allowed search query length in bytes.
const MaxQueryLength = 4096

// Request is a validated search query.
type Request struct {
	query  string
	filter filter.Spec
	limit  int
}

// New validates search parameters. limit 0 means "use the service default".
// Every validation error wraps domain.ErrInvalidQuery.
func New(query string, spec filter.Spec, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrInvalidQuery, limit)
	}
	if err := spec.Validate(); err != nil {
		return Request{}, fmt.Errorf("%w: filter: %w", domain.ErrInvalidQuery, err)
	}
	return Request{query: query, filter: spec, limit: limit}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Filter returns the structured filter.
func (r *Request) Filter() filter.Spec { return r.filter }

// Limit returns the requested result cap, 0 if unset.
func (r *Request) Limit() int { return r.limit }
