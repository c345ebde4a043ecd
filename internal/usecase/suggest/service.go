// Package suggest completes partial words against catalog titles.
package suggest

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// Service answers autocomplete requests from a precomputed title vocabulary.
type Service struct {
	words []string // sorted, distinct, lowercase
}

// New builds the vocabulary from every whitespace-separated word of every title.
func New(catalog domain.Catalog) *Service {
	seen := make(map[string]struct{})
	for i := range catalog {
		for _, w := range strings.Fields(strings.ToLower(catalog[i].Title)) {
			seen[w] = struct{}{}
		}
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return &Service{words: words}
}

// Suggest returns up to limit title words starting with partial (case-insensitive),
// in lexical order. limit <= 0 returns an empty slice.
func (s *Service) Suggest(partial string, limit int) []string {
	out := []string{}
	if limit <= 0 {
		return out
	}
	prefix := strings.ToLower(partial)
	// Words sharing a prefix are contiguous in sorted order.
	i := sort.SearchStrings(s.words, prefix)
	for ; i < len(s.words) && len(out) < limit; i++ {
		if !strings.HasPrefix(s.words[i], prefix) {
			break
		}
		out = append(out, s.words[i])
	}
	return out
}

// Size returns the vocabulary size.
func (s *Service) Size() int { return len(s.words) }
