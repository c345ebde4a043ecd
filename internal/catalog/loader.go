package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// Loader reads course catalogs from JSON. A catalog is a JSON array of course
// objects; malformed records are repaired with defaults and logged, never fatal.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a catalog loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads the catalog file at path.
func (l *Loader) Load(ctx context.Context, path string) (domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &domain.CatalogLoadError{Source: path, Err: err}
	}
	return l.Decode(bytes.NewReader(data), path)
}

// Decode parses a catalog from r. source names the input in errors and logs.
func (l *Loader) Decode(r io.Reader, source string) (domain.Catalog, error) {
	dec := json.NewDecoder(r)
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, &domain.CatalogLoadError{Source: source, Err: fmt.Errorf("not a JSON array of records: %w", err)}
	}
	// null decodes into a nil slice without error.
	if raw == nil {
		return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("not a JSON array of records: null")}
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("unexpected data after the record array")}
	}

	cat := make(domain.Catalog, 0, len(raw))
	degraded := 0
	for i, msg := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil || fields == nil {
			l.logger.Warn("Skipping catalog entry that is not an object",
				zap.String("source", source), zap.Int("entry", i))
			degraded++
			continue
		}
		c, problems := decodeCourse(fields)
		if len(problems) > 0 {
			degraded++
			l.logger.Warn("Degraded catalog record",
				zap.String("source", source),
				zap.Int("entry", i),
				zap.String("title", c.Title),
				zap.Strings("problems", problems),
			)
		}
		cat = append(cat, c)
	}

	l.logger.Info("Catalog loaded",
		zap.String("source", source),
		zap.Int("courses", len(cat)),
		zap.Int("degraded", degraded),
	)
	return cat, nil
}

// decodeCourse extracts known fields one at a time so that a single bad field
// only resets that field.
func decodeCourse(fields map[string]json.RawMessage) (domain.Course, []string) {
	var (
		c        domain.Course
		problems []string
	)
	bad := func(name string, err error) {
		problems = append(problems, fmt.Sprintf("%s: %v", name, err))
	}

	if err := decodeString(fields, "title", &c.Title); err != nil {
		bad("title", err)
	}
	if strings.TrimSpace(c.Title) == "" {
		problems = append(problems, "title: missing")
		c.Title = domain.UntitledCourse
	}
	if err := decodeString(fields, "url", &c.URL); err != nil {
		bad("url", err)
	}
	if strings.TrimSpace(c.URL) == "" {
		problems = append(problems, "url: missing")
	}
	if err := decodeString(fields, "full_description", &c.FullDescription); err != nil {
		bad("full_description", err)
	}
	if err := decodeStrings(fields, "key_takeaways", &c.KeyTakeaways); err != nil {
		bad("key_takeaways", err)
	}
	if err := decodeStrings(fields, "curriculum", &c.Curriculum); err != nil {
		bad("curriculum", err)
	}

	var level string
	if err := decodeString(fields, "difficulty", &level); err != nil {
		bad("difficulty", err)
	}
	c.Difficulty = domain.ParseDifficulty(level)

	if msg, ok := fields["is_free"]; ok && !isNull(msg) {
		if err := json.Unmarshal(msg, &c.IsFree); err != nil {
			bad("is_free", err)
			c.IsFree = false
		}
	}
	if msg, ok := fields["num_lessons"]; ok {
		if err := json.Unmarshal(msg, &c.NumLessons); err != nil {
			bad("num_lessons", err)
			c.NumLessons = domain.LessonCount{}
		}
	}
	if err := decodeString(fields, "estimated_time", &c.EstimatedTime); err != nil {
		bad("estimated_time", err)
	}
	if err := decodeRating(fields, &c.Rating); err != nil {
		bad("rating", err)
	}
	return c, problems
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

func decodeString(fields map[string]json.RawMessage, name string, dst *string) error {
	msg, ok := fields[name]
	if !ok || isNull(msg) {
		return nil
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		*dst = ""
		return fmt.Errorf("expected string")
	}
	return nil
}

// decodeStrings normalizes an empty list to nil so that encode/decode round-trips.
func decodeStrings(fields map[string]json.RawMessage, name string, dst *[]string) error {
	msg, ok := fields[name]
	if !ok || isNull(msg) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err != nil {
		*dst = nil
		return fmt.Errorf("expected list of strings")
	}
	if len(list) > 0 {
		*dst = list
	}
	return nil
}

// decodeRating accepts "4.5/5" as well as a bare number.
func decodeRating(fields map[string]json.RawMessage, dst *string) error {
	msg, ok := fields["rating"]
	if !ok || isNull(msg) {
		return nil
	}
	if err := json.Unmarshal(msg, dst); err == nil {
		return nil
	}
	var n float64
	if err := json.Unmarshal(msg, &n); err != nil {
		*dst = ""
		return fmt.Errorf("expected string or number")
	}
	*dst = strconv.FormatFloat(n, 'f', -1, 64) + "/5"
	return nil
}
