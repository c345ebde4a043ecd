package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UntitledCourse replaces an empty or missing title during catalog load.
const UntitledCourse = "Untitled course"

// Difficulty is the declared level of a course. The zero value means unspecified.
type Difficulty string

// Known difficulty levels.
const (
	DifficultyUnspecified  Difficulty = ""
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// ParseDifficulty normalizes a free-form level ("beginner", " Advanced ") to a Difficulty.
// Anything unrecognized maps to DifficultyUnspecified.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return DifficultyBeginner
	case "intermediate":
		return DifficultyIntermediate
	case "advanced":
		return DifficultyAdvanced
	default:
		return DifficultyUnspecified
	}
}

// String returns the display label. Unspecified renders as "Not specified".
func (d Difficulty) String() string {
	if d == DifficultyUnspecified {
		return "Not specified"
	}
	return string(d)
}

// LessonCount is an integer lesson count or "not specified".
type LessonCount struct {
	N     int
	Known bool
}

// Lessons returns a known lesson count.
func Lessons(n int) LessonCount { return LessonCount{N: n, Known: true} }

// String implements fmt.Stringer.
func (l LessonCount) String() string {
	if !l.Known {
		return "Not specified"
	}
	return strconv.Itoa(l.N)
}

// MarshalJSON encodes a known count as a number and an unknown one as null.
func (l LessonCount) MarshalJSON() ([]byte, error) {
	if !l.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(l.N)), nil
}

// UnmarshalJSON accepts a number, a numeric string ("12") or any other string/null as unknown.
func (l *LessonCount) UnmarshalJSON(data []byte) error {
	*l = LessonCount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("lesson count: %w", err)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*l = Lessons(n)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("lesson count: %w", err)
	}
	*l = Lessons(int(f))
	return nil
}

// Course is a single catalog record. It is read-only once the catalog is loaded.
type Course struct {
	Title           string      `json:"title"`
	URL             string      `json:"url"`
	FullDescription string      `json:"full_description,omitempty"`
	KeyTakeaways    []string    `json:"key_takeaways,omitempty"`
	Curriculum      []string    `json:"curriculum,omitempty"`
	Difficulty      Difficulty  `json:"difficulty,omitempty"`
	IsFree          bool        `json:"is_free"`
	NumLessons      LessonCount `json:"num_lessons"`
	EstimatedTime   string      `json:"estimated_time,omitempty"`
	Rating          string      `json:"rating,omitempty"`
}

// EmbeddingText is the text a course is embedded under: title, description and takeaways.
func (c *Course) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteByte(' ')
	b.WriteString(c.FullDescription)
	b.WriteByte(' ')
	b.WriteString(strings.Join(c.KeyTakeaways, " "))
	return b.String()
}

// LexicalText is the text used for TF-IDF features: title and description.
func (c *Course) LexicalText() string {
	return c.Title + " " + c.FullDescription
}
