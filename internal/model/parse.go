package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSkills splits comma-separated input, trims each token and drops empty ones.
// Order is preserved.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseKeywords splits scrape keywords on newlines and commas.
func ParseKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ParseRating parses an optional client rating in [0, 5]. Empty input yields nil.
func ParseRating(raw string) (*float64, error) {
	v, err := parseOptionalFloat(raw, "client rating")
	if err != nil || v == nil {
		return nil, err
	}
	if *v < 0 || *v > 5 {
		return nil, fmt.Errorf("client rating must be between 0 and 5, got %s", strings.TrimSpace(raw))
	}
	return v, nil
}

// ParsePayRate parses an optional average pay rate (>= 0). Empty input yields nil.
func ParsePayRate(raw string) (*float64, error) {
	v, err := parseOptionalFloat(raw, "average pay rate")
	if err != nil || v == nil {
		return nil, err
	}
	if *v < 0 {
		return nil, fmt.Errorf("average pay rate must be >= 0, got %s", strings.TrimSpace(raw))
	}
	return v, nil
}

func parseOptionalFloat(raw, label string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be a number, got %q", label, strings.TrimSpace(raw))
	}
	return &v, nil
}

// decodeLooseFloat accepts a JSON number, a numeric string, an empty string or null.
func decodeLooseFloat(raw json.RawMessage) (*float64, error) {
	if isNullRaw(raw) {
		return nil, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Free-text values such as "N/A" carry no number.
		return nil, nil
	}
	return &v, nil
}
