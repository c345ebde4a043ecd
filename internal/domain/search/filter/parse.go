package filter

import (
	"math"
	"strconv"
	"strings"
)

// ParseDuration converts an estimated-time label to hours.
// "3 Hour" and "2 Hours" parse as hours, "45 Mins" as minutes; anything else is 0.
func ParseDuration(s string) float64 {
	var divisor float64
	switch {
	case strings.Contains(s, "Hour"):
		divisor = 1
	case strings.Contains(s, "Mins"):
		divisor = 60
	default:
		return 0
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	return parseNumber(fields[0]) / divisor
}

// ParseRating converts an "X/5" label to X. Unparsable input is 0.
func ParseRating(s string) float64 {
	head, _, _ := strings.Cut(s, "/")
	return parseNumber(strings.TrimSpace(head))
}

// parseNumber parses a finite float; NaN, Inf and garbage become 0.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
