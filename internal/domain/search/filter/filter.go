package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// MaxTopics is the maximum number of topic keywords in a single filter.
const MaxTopics = 32

// Spec is a structured course filter. Every set criterion must pass; unset
// criteria (empty sets, false flags, nil bounds) are no-ops.
type Spec struct {
	Difficulties     []domain.Difficulty
	FreeOnly         bool
	PaidOnly         bool
	MinRating        *float64
	MaxDurationHours *float64
	// Topics match case-insensitively as substrings of the title only.
	Topics []string
}

// Validate checks the filter for contradictory or out-of-range criteria.
func (s Spec) Validate() error {
	if s.FreeOnly && s.PaidOnly {
		return fmt.Errorf("free_only and paid_only are mutually exclusive")
	}
	for _, d := range s.Difficulties {
		if d == domain.DifficultyUnspecified {
			continue
		}
		if domain.ParseDifficulty(string(d)) != d {
			return fmt.Errorf("unknown difficulty %q", d)
		}
	}
	if s.MinRating != nil && (*s.MinRating < 0 || *s.MinRating > 5) {
		return fmt.Errorf("min_rating must be between 0 and 5, got %g", *s.MinRating)
	}
	if s.MaxDurationHours != nil && *s.MaxDurationHours < 0 {
		return fmt.Errorf("max_duration_hours must not be negative, got %g", *s.MaxDurationHours)
	}
	if len(s.Topics) > MaxTopics {
		return fmt.Errorf("too many topics (max %d)", MaxTopics)
	}
	return nil
}

// IsEmpty reports whether the filter has no active criteria.
func (s Spec) IsEmpty() bool {
	return len(s.Difficulties) == 0 && !s.FreeOnly && !s.PaidOnly &&
		s.MinRating == nil && s.MaxDurationHours == nil && len(s.activeTopics()) == 0
}

// Match reports whether c satisfies every active criterion.
func (s Spec) Match(c *domain.Course) bool {
	if len(s.Difficulties) > 0 && !s.matchDifficulty(c.Difficulty) {
		return false
	}
	if s.FreeOnly && !c.IsFree {
		return false
	}
	if s.PaidOnly && c.IsFree {
		return false
	}
	if s.MinRating != nil && ParseRating(c.Rating) < *s.MinRating {
		return false
	}
	if s.MaxDurationHours != nil && ParseDuration(c.EstimatedTime) > *s.MaxDurationHours {
		return false
	}
	if topics := s.activeTopics(); len(topics) > 0 && !matchTopic(c.Title, topics) {
		return false
	}
	return true
}

func (s Spec) matchDifficulty(d domain.Difficulty) bool {
	for _, want := range s.Difficulties {
		if want == d {
			return true
		}
	}
	return false
}

// activeTopics drops blank topic keywords so that [""] does not match everything.
func (s Spec) activeTopics() []string {
	var out []string
	for _, t := range s.Topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}

func matchTopic(title string, topics []string) bool {
	lower := strings.ToLower(title)
	for _, t := range topics {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
